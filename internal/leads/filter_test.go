package leads

import (
	"testing"

	"laura-backend/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLeads() []Lead {
	return []Lead{
		{ID: "DEM-AAA-0001", Status: StatusNew, Service: pricing.ServiceRegular, Name: "Mme Martin", City: "Lyon", Phone: "0612345678", PriceEstimate: 80},
		{ID: "DEM-AAA-0002", Status: StatusCancelled, Service: pricing.ServiceSeniors, Name: "M. Durand", City: "Paris", Phone: "0700000000", PriceEstimate: 50},
		{ID: "DEM-BBB-0003", Status: StatusNew, Service: pricing.ServiceProfessional, Name: "ACME", City: "Lille", Phone: "0320000000", PriceEstimate: 120},
	}
}

func TestFilter(t *testing.T) {
	items := sampleLeads()

	assert.Len(t, Filter{}.Apply(items), 3)
	assert.Len(t, Filter{Status: StatusNew}.Apply(items), 2)
	assert.Len(t, Filter{Service: pricing.ServiceSeniors}.Apply(items), 1)

	got := Filter{Query: "lyon"}.Apply(items)
	require.Len(t, got, 1)
	assert.Equal(t, "DEM-AAA-0001", got[0].ID)

	assert.Len(t, Filter{Query: "dem-aaa"}.Apply(items), 2)
	assert.Len(t, Filter{Query: "0700"}.Apply(items), 1)
	assert.Empty(t, Filter{Status: StatusNew, Query: "durand"}.Apply(items))
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(sampleLeads())
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.ByStatus[StatusNew])
	assert.Equal(t, 0, st.ByStatus[StatusConfirmed])
	assert.Equal(t, 1, st.ByService[pricing.ServiceSeniors])
	assert.Equal(t, 200.0, st.PipelineValue)
}

func TestRenderStatusChart(t *testing.T) {
	png, err := RenderStatusChart(ComputeStats(nil))
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}
