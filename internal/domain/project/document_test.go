package project_test

import (
	"testing"
	"time"

	"github.com/rpggio/tenderscore/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestLot_AddCompanyReusesSmallestFreeID(t *testing.T) {
	p := project.New("p1", project.Info{})
	lot := p.AddLot("Lot", "01", time.Now())

	for i := 0; i < 3; i++ {
		_, err := lot.AddCompany("Company")
		require.NoError(t, err)
	}
	lot.Companies = append(lot.Companies[:1], lot.Companies[2:]...)

	c, err := lot.AddCompany("Replacement")
	require.NoError(t, err)
	require.Equal(t, 2, c.ID)

	v, err := lot.CurrentVersion()
	require.NoError(t, err)
	require.Contains(t, v.Roster, 2)
	require.Equal(t, project.DecisionUndecided, v.Decisions[2])
}

func TestLot_AddCompanyLimit(t *testing.T) {
	p := project.New("p1", project.Info{})
	lot := p.AddLot("Lot", "01", time.Now())
	for i := 0; i < project.MaxCompanies; i++ {
		_, err := lot.AddCompany("Company")
		require.NoError(t, err)
	}
	_, err := lot.AddCompany("One too many")
	require.ErrorIs(t, err, project.ErrLimitReached)

	_, err = lot.AddCompany(" ")
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestLot_ExclusionRequiresReason(t *testing.T) {
	p := project.New("p1", project.Info{})
	lot := p.AddLot("Lot", "01", time.Now())
	_, _ = lot.AddCompany("Company")

	require.ErrorIs(t, lot.SetCompanyStatus(1, project.StatusExcluded, ""), project.ErrInvalidInput)
	require.NoError(t, lot.SetCompanyStatus(1, project.StatusExcluded, "late offer"))
	c, _ := lot.Company(1)
	require.True(t, c.Excluded())
	require.Equal(t, "late offer", c.ExclusionReason)
}

func TestRoleForID(t *testing.T) {
	require.Equal(t, project.RolePrice, project.RoleForID("prix"))
	require.Equal(t, project.RolePrice, project.RoleForID("Price"))
	require.Equal(t, project.RoleEnvironmental, project.RoleForID("environnemental"))
	require.Equal(t, project.RolePlanning, project.RoleForID("delais"))
	require.Equal(t, project.RoleGeneric, project.RoleForID("memoire"))
}

func TestLot_Weights(t *testing.T) {
	p := project.New("p1", project.Info{})
	lot := p.AddLot("Lot", "01", time.Now())

	_, err := lot.AddCriterion(project.CriterionSpec{ID: "prix", Weight: 40.5})
	require.NoError(t, err)
	_, err = lot.AddCriterion(project.CriterionSpec{ID: "memo", Weight: 59.25})
	require.ErrorIs(t, err, project.ErrInvalidInput)
	_, err = lot.AddCriterion(project.CriterionSpec{ID: "memo", Weight: 59.5})
	require.NoError(t, err)

	require.NoError(t, lot.CheckWeights())
	require.Equal(t, 40.5, lot.PriceWeight())

	require.NoError(t, lot.SetCriterionWeight("memo", 50))
	err = lot.CheckWeights()
	require.ErrorIs(t, err, project.ErrWeightSum)
	var sumErr *project.WeightSumError
	require.ErrorAs(t, err, &sumErr)
	require.Equal(t, 90.5, sumErr.Total)
}

func TestLot_AddLine(t *testing.T) {
	p := project.New("p1", project.Info{})
	lot := p.AddLot("Lot", "01", time.Now())

	line, err := lot.AddLine("PSE 1", project.KindPSE, "")
	require.NoError(t, err)
	require.Equal(t, 1, line.ID)
	require.True(t, line.Active)
	require.Equal(t, project.SheetDPGF1, line.Sheet)

	for i := 1; i < project.MaxLines; i++ {
		_, err := lot.AddLine("Line", project.KindStandard, project.SheetBoth)
		require.NoError(t, err)
	}
	_, err = lot.AddLine("Overflow", project.KindStandard, "")
	require.ErrorIs(t, err, project.ErrLimitReached)
}

func TestProject_CloneIsIndependent(t *testing.T) {
	p := sampleProject("p1")
	clone, err := p.Clone()
	require.NoError(t, err)
	require.Equal(t, p, clone)

	clone.Lots[0].Companies[0].Name = "Changed"
	require.Equal(t, "Batiplus", p.Lots[0].Companies[0].Name)
}

func TestProject_Summary(t *testing.T) {
	p := sampleProject("p1")
	at := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)

	s := p.Summary(at)
	require.Equal(t, project.Summary{
		ID:          "p1",
		Name:        "Groupe scolaire",
		MarketRef:   "2024-017",
		LotAnalyzed: "01",
		UpdatedAt:   at,
	}, s)
}

func TestValidate(t *testing.T) {
	require.NoError(t, project.Validate(sampleProject("p1")))

	dup := sampleProject("p1")
	dup.Lots[0].Companies = append(dup.Lots[0].Companies, dup.Lots[0].Companies[0])
	require.ErrorIs(t, project.Validate(dup), project.ErrInvalidInput)

	badVersion := sampleProject("p1")
	badVersion.Lots[0].CurrentVersionID = "nope"
	require.ErrorIs(t, project.Validate(badVersion), project.ErrInvalidInput)

	badNote := sampleProject("p1")
	badNote.Lots[0].Versions[0].Notes = append(badNote.Lots[0].Versions[0].Notes, project.TechnicalNote{
		CompanyID:   1,
		CriterionID: "memo",
		Notation:    "excellent",
	})
	require.ErrorIs(t, project.Validate(badNote), project.ErrInvalidInput)
}
