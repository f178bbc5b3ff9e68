package leads

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportSingleLead(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	lead := Lead{
		ID:             "DEM-ABC-1234",
		CreatedAt:      time.Date(2024, 3, 4, 23, 30, 0, 0, time.UTC),
		Status:         StatusContacted,
		Name:           "Mme Martin",
		Phone:          "06 12 34 56 78",
		City:           "Lyon",
		ServiceLabel:   "Ménage régulier",
		FrequencyLabel: "1×/semaine",
		Hours:          2.5,
		PriceEstimate:  82.21875,
		Message:        `Le code est "12B"`,
	}

	out := string(ExportCSV([]Lead{lead}, paris))
	require.True(t, strings.HasPrefix(out, "\ufeff"))

	lines := strings.Split(strings.TrimPrefix(out, "\ufeff"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID;Date;Statut;Nom;Téléphone;Ville;Service;Fréquence;Heures;Prix estimé;Message", lines[0])
	assert.Equal(t,
		`"DEM-ABC-1234";"05/03/2024";"Contactée";"Mme Martin";"06 12 34 56 78";"Lyon";"Ménage régulier";"1×/semaine";"2.5";"82.21875€";"Le code est ""12B"""`,
		lines[1])
}

func TestExportEmptyCells(t *testing.T) {
	out := string(ExportCSV([]Lead{{ID: "DEM-X-0000", Status: StatusNew}}, nil))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], `;"";"";""`))
}

func TestExportFilename(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	now := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "demandes_laura_2025-01-01.csv", ExportFilename(now, paris))
}
