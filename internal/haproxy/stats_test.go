package haproxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleShowStat = `# pxname,svname,qcur,qmax,scur,smax,slim,stot,status,check_status,
cache,FRONTEND,,,0,1,2000,42,OPEN,,
cache,a.node,0,0,0,1,,20,UP,L4OK,
cache,b.node,0,0,0,1,,22,UP,L4OK,
cache,BACKEND,0,0,0,1,200,42,UP,,
`

func TestParseStats_HeaderAndRows(t *testing.T) {
	stats, err := ParseStats(sampleShowStat)
	require.NoError(t, err)

	// The "# " prefix and the trailing comma are artifacts of the socket
	// protocol, not data.
	assert.Equal(t, "pxname", stats.Header[0])
	assert.NotEqual(t, "", stats.Header[len(stats.Header)-1])
	assert.Len(t, stats.Rows, 4)
}

func TestParseStats_Summary(t *testing.T) {
	stats, err := ParseStats(sampleShowStat)
	require.NoError(t, err)

	summary := stats.Summary()
	require.Len(t, summary, 4)

	assert.Equal(t, "cache", summary[1].Proxy)
	assert.Equal(t, "a.node", summary[1].Service)
	assert.Equal(t, "UP", summary[1].Status)
	assert.Equal(t, "20", summary[1].Total)
	assert.Equal(t, "L4OK", summary[1].CheckRes)
}

func TestParseStats_EmptyOutput(t *testing.T) {
	_, err := ParseStats("")
	assert.Error(t, err)

	_, err = ParseStats("   \n  ")
	assert.Error(t, err)
}
