package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_Unmarshal(t *testing.T) {
	var probe struct {
		Due   Field[Date] `json:"due"`
		Until Field[Date] `json:"until"`
		Gone  Field[Date] `json:"gone"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-01-01","until":"2024-02-03T10:00:00Z","gone":null}`), &probe))

	assert.True(t, probe.Due.Value.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 10, probe.Until.Value.Hour())
	assert.True(t, probe.Gone.IsNull())

	due := DateField(probe.Due)
	assert.True(t, due.Set)
	assert.Equal(t, 2024, due.Value.Year())
	assert.True(t, DateField(probe.Gone).IsNull())
	assert.False(t, DateField(Field[Date]{}).Set)
}

func TestDate_Invalid(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"01/02/2024"`), &d))
}
