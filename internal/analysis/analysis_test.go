package analysis_test

import (
	"errors"
	"testing"

	"github.com/signalnine/foldrun/internal/analysis"
	"github.com/signalnine/foldrun/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want registry.Group
	}{
		{"mut_model1_Repair", registry.Mutant},
		{"seq_model2_Repair", registry.Sequence},
		{"native_Repair", registry.Native},
		{"./mut_model1_Repair.pdb", registry.Mutant},
		{"/scratch/seq_model2_Repair.pdb", registry.Sequence},
		{"/home/mutants/seqs/native_Repair.pdb", registry.Native},
		{"MUT_model1_Repair", registry.Native},
		{"seq_mut_model", registry.Mutant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analysis.Classify(tt.name))
		})
	}
}

func TestIsDeclaredNative(t *testing.T) {
	assert.True(t, analysis.IsDeclaredNative("native_Repair"))
	assert.True(t, analysis.IsDeclaredNative("./native_Repair.pdb"))
	assert.False(t, analysis.IsDeclaredNative("1abc_Repair.pdb"))
	assert.False(t, analysis.IsDeclaredNative("native.pdb"))
}

type fixture struct {
	t   *testing.T
	dir string
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, dir: t.TempDir()}
}

func (f *fixture) candidate(label string, g registry.Group, name string, base float64) analysis.Candidate {
	path := writeReport(f.t, f.dir, label+".fxout", reportRow(name, base)+"\n")
	return analysis.Candidate{Label: label, Group: g, ReportPath: path}
}

func TestAnalyzeFailureIsolation(t *testing.T) {
	f := newFixture(t)
	cands := []analysis.Candidate{
		f.candidate("seq_model1.pdb", registry.Sequence, "seq_model1_Repair.pdb", 10),
		{Label: "seq_model2.pdb", Group: registry.Sequence, SkipStatus: "stability_failed", SkipReason: "exit status 1"},
		f.candidate("seq_model3.pdb", registry.Sequence, "seq_model3_Repair.pdb", 20),
		f.candidate("mut_model1.pdb", registry.Mutant, "mut_model1_Repair.pdb", 5),
		f.candidate("native.pdb", registry.Native, "native_Repair.pdb", 1),
	}
	a := analysis.Analyze(analysis.Options{Title: "ensemble", Candidates: cands})
	require.NoError(t, a.Err())
	require.NotNil(t, a.Sequence)
	assert.Equal(t, 2, a.Sequence.N)
	assert.Equal(t, analysis.Stat{Mean: 15, Std: 5}, a.Sequence.PerComponent["total energy"])
	require.Len(t, a.Skipped, 1)
	assert.Equal(t, "seq_model2.pdb", a.Skipped[0].Model)
	assert.Equal(t, "stability_failed", a.Skipped[0].Status)
	require.NotNil(t, a.Native)
	assert.Equal(t, "native_Repair.pdb", a.Native.Name)
	assert.Empty(t, a.Anomalies)
}

func TestAnalyzeEmptyMutantGroup(t *testing.T) {
	f := newFixture(t)
	cands := []analysis.Candidate{
		f.candidate("seq_model1.pdb", registry.Sequence, "seq_model1_Repair.pdb", 10),
		f.candidate("native.pdb", registry.Native, "native_Repair.pdb", 1),
	}
	a := analysis.Analyze(analysis.Options{Candidates: cands})
	require.NoError(t, a.Err(), "one usable group is enough")
	assert.NotNil(t, a.Sequence)
	assert.Nil(t, a.Mutant)
	assert.True(t, errors.Is(a.MutantErr, analysis.ErrEmptyGroup))
	var empty *analysis.EmptyGroupError
	require.True(t, errors.As(a.MutantErr, &empty))
	assert.Equal(t, registry.Mutant, empty.Group)
	assert.NoError(t, a.SequenceErr)

	_, err := a.Stats(registry.Mutant)
	assert.ErrorIs(t, err, analysis.ErrEmptyGroup)
}

func TestAnalyzeNoUsableData(t *testing.T) {
	f := newFixture(t)
	cands := []analysis.Candidate{
		{Label: "seq_model1.pdb", Group: registry.Sequence, SkipStatus: "repair_failed"},
		f.candidate("native.pdb", registry.Native, "native_Repair.pdb", 1),
	}
	a := analysis.Analyze(analysis.Options{Candidates: cands})
	err := a.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrNoUsableData)
	assert.ErrorIs(t, err, analysis.ErrEmptyGroup)
}

func TestAnalyzeParseFailureSkipsModel(t *testing.T) {
	f := newFixture(t)
	bad := writeReport(t, f.dir, "mut_model2.fxout", "seq_model2_Repair.pdb\t1\t2\n")
	cands := []analysis.Candidate{
		f.candidate("seq_model1.pdb", registry.Sequence, "seq_model1_Repair.pdb", 10),
		f.candidate("mut_model1.pdb", registry.Mutant, "mut_model1_Repair.pdb", 5),
		{Label: "mut_model2.pdb", Group: registry.Mutant, ReportPath: bad},
		f.candidate("native.pdb", registry.Native, "native_Repair.pdb", 1),
	}
	a := analysis.Analyze(analysis.Options{Candidates: cands})
	require.NoError(t, a.Err())
	assert.Equal(t, 1, a.Mutant.N)
	require.Len(t, a.Skipped, 1)
	assert.Equal(t, analysis.StatusParseFailed, a.Skipped[0].Status)
	assert.Equal(t, registry.Mutant, a.Skipped[0].Group)
}

func kinds(anomalies []analysis.Anomaly) []analysis.AnomalyKind {
	var out []analysis.AnomalyKind
	for _, a := range anomalies {
		out = append(out, a.Kind)
	}
	return out
}

func TestAnalyzeNativeAnomalies(t *testing.T) {
	t.Run("duplicate native keeps first", func(t *testing.T) {
		f := newFixture(t)
		cands := []analysis.Candidate{
			f.candidate("seq_model1.pdb", registry.Sequence, "seq_model1_Repair.pdb", 10),
			f.candidate("native.pdb", registry.Native, "native_Repair.pdb", 1),
			f.candidate("extra.pdb", registry.Native, "native_Repair.pdb", 99),
		}
		a := analysis.Analyze(analysis.Options{Candidates: cands})
		require.NotNil(t, a.Native)
		assert.Equal(t, 1.0, a.Native.Components["total energy"])
		assert.Equal(t, []analysis.AnomalyKind{analysis.AnomalyDuplicateNative}, kinds(a.Anomalies))
	})

	t.Run("unrecognized name is treated as native", func(t *testing.T) {
		f := newFixture(t)
		cands := []analysis.Candidate{
			f.candidate("seq_model1.pdb", registry.Sequence, "seq_model1_Repair.pdb", 10),
			f.candidate("native.pdb", registry.Native, "1abc_Repair.pdb", 1),
		}
		a := analysis.Analyze(analysis.Options{Candidates: cands})
		require.NotNil(t, a.Native)
		assert.Equal(t, []analysis.AnomalyKind{analysis.AnomalyUnrecognizedName}, kinds(a.Anomalies))
	})

	t.Run("missing native", func(t *testing.T) {
		f := newFixture(t)
		cands := []analysis.Candidate{
			f.candidate("seq_model1.pdb", registry.Sequence, "seq_model1_Repair.pdb", 10),
			{Label: "native.pdb", Group: registry.Native, SkipStatus: "repair_failed"},
		}
		a := analysis.Analyze(analysis.Options{Candidates: cands})
		assert.Nil(t, a.Native)
		assert.Contains(t, kinds(a.Anomalies), analysis.AnomalyMissingNative)
	})
}

func TestAnalyzeGroupMismatch(t *testing.T) {
	f := newFixture(t)
	cands := []analysis.Candidate{
		f.candidate("seq_model1.pdb", registry.Sequence, "mut_model1_Repair.pdb", 10),
		f.candidate("native.pdb", registry.Native, "native_Repair.pdb", 1),
	}
	a := analysis.Analyze(analysis.Options{Candidates: cands})
	assert.Equal(t, []analysis.AnomalyKind{analysis.AnomalyGroupMismatch}, kinds(a.Anomalies))
	assert.Nil(t, a.Sequence, "classification follows the report name")
	require.NotNil(t, a.Mutant)
	assert.Equal(t, 1, a.Mutant.N)
}

func TestAnalyzeCarriesAnomalies(t *testing.T) {
	f := newFixture(t)
	cands := []analysis.Candidate{
		f.candidate("seq_model1.pdb", registry.Sequence, "seq_model1_Repair.pdb", 10),
		f.candidate("native.pdb", registry.Native, "native_Repair.pdb", 1),
	}
	in := analysis.Anomaly{Kind: analysis.AnomalyDiscoveryEmpty, Subject: "mutant", Detail: "no model files"}
	a := analysis.Analyze(analysis.Options{Candidates: cands, Anomalies: []analysis.Anomaly{in}})
	assert.Equal(t, in, a.Anomalies[0])
}
