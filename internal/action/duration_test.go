package action

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDurationDecodesTaggedShapes(t *testing.T) {
	t.Parallel()

	var ms Duration
	require.NoError(t, yaml.Unmarshal([]byte(`{milliseconds: 1500}`), &ms))
	require.Equal(t, 1500*time.Millisecond, ms.AsDuration())

	var secs Duration
	require.NoError(t, yaml.Unmarshal([]byte(`{seconds: 30}`), &secs))
	require.Equal(t, 30*time.Second, secs.AsDuration())
}

func TestDurationRejectsAmbiguousShapes(t *testing.T) {
	t.Parallel()

	var d Duration
	require.Error(t, yaml.Unmarshal([]byte(`{milliseconds: 1, seconds: 1}`), &d))
	require.Error(t, yaml.Unmarshal([]byte(`{}`), &d))
}
