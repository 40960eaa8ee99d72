package resolve_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-voiceform/pkg/model"
	"github.com/goliatone/go-voiceform/pkg/resolve"
	"github.com/goliatone/go-voiceform/pkg/schema"
)

func defaultResolver(t *testing.T, opts ...resolve.Option) *resolve.Resolver {
	t.Helper()
	s, err := schema.Default()
	require.NoError(t, err)
	return resolve.New(s, opts...)
}

func TestResolve_Strategies(t *testing.T) {
	r := defaultResolver(t)

	tests := []struct {
		hint         string
		wantID       string
		wantStrategy resolve.Strategy
	}{
		{hint: "dateOfBirth", wantID: "dateOfBirth", wantStrategy: resolve.StrategyExact},
		{hint: "dob", wantID: "dateOfBirth", wantStrategy: resolve.StrategyAlias},
		{hint: "DOB", wantID: "dateOfBirth", wantStrategy: resolve.StrategyAlias},
		{hint: "full_name", wantID: "fullName", wantStrategy: resolve.StrategyAlias},
		{hint: "DateOfBirth ", wantID: "dateOfBirth", wantStrategy: resolve.StrategyNormalized},
		{hint: "work-phone", wantID: "workPhone", wantStrategy: resolve.StrategyNormalized},
		{hint: "Annual Income", wantID: "annualIncome", wantStrategy: resolve.StrategyNormalized},
		{hint: "employer", wantID: "employerName", wantStrategy: resolve.StrategyContainment},
		{hint: "retirement age", wantID: "expectedRetirementAge", wantStrategy: resolve.StrategyContainment},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			got, err := r.Resolve(tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.FieldID)
			assert.Equal(t, tt.wantStrategy, got.Strategy)
		})
	}
}

func TestResolve_Unresolved(t *testing.T) {
	r := defaultResolver(t)

	for _, hint := range []string{"unknown_xyz", "", "   ", "zzz", "abc"} {
		_, err := r.Resolve(hint)
		require.Error(t, err, "hint %q", hint)
		assert.True(t, errors.Is(err, resolve.ErrUnresolvedField))

		var unresolved *resolve.UnresolvedFieldError
		require.True(t, errors.As(err, &unresolved))
		assert.Equal(t, hint, unresolved.Hint)
		assert.Equal(t, "unknown field: "+hint, err.Error())
	}
}

func TestResolve_ShortHintsSkipContainment(t *testing.T) {
	s, err := model.NewSchema("short", model.Section{Name: "A", Fields: []model.FieldDescriptor{
		{ID: "incomeSource", Label: "Income Source", Type: model.FieldTypeText},
	}})
	require.NoError(t, err)
	r := resolve.New(s, resolve.WithoutAliases())

	_, err = r.Resolve("inco")
	assert.ErrorIs(t, err, resolve.ErrUnresolvedField)

	got, err := r.Resolve("incom")
	require.NoError(t, err)
	assert.Equal(t, "incomeSource", got.FieldID)
}

func TestResolve_ContainmentTieBreakFollowsSchemaOrder(t *testing.T) {
	s, err := model.NewSchema("ties",
		model.Section{Name: "A", Fields: []model.FieldDescriptor{
			{ID: "primaryBeneficiaryName", Label: "Primary", Type: model.FieldTypeText},
		}},
		model.Section{Name: "B", Fields: []model.FieldDescriptor{
			{ID: "contingentBeneficiaryName", Label: "Contingent", Type: model.FieldTypeText},
		}},
	)
	require.NoError(t, err)
	r := resolve.New(s)

	for i := 0; i < 20; i++ {
		got, err := r.Resolve("beneficiary name")
		require.NoError(t, err)
		assert.Equal(t, "primaryBeneficiaryName", got.FieldID)
	}
	assert.Equal(t, []string{"primaryBeneficiaryName", "contingentBeneficiaryName"}, r.Candidates("beneficiary name"))
}

func TestResolve_CaseAndSeparatorInsensitive(t *testing.T) {
	r := defaultResolver(t, resolve.WithoutAliases())

	// Each hint is a substring of exactly one id in the default schema.
	hints := []string{"hospitalization", "cholesterol", "sleepapnea", "motorcycle", "bankruptcy"}
	styles := []func(string) string{
		strings.ToUpper,
		strings.ToLower,
		func(s string) string { return strings.Join(strings.Split(s, ""), "_") },
		func(s string) string { return " " + strings.Join(strings.Split(s, ""), "-") + " " },
	}

	for _, hint := range hints {
		want, err := r.Resolve(hint)
		require.NoError(t, err)
		for _, style := range styles {
			got, err := r.Resolve(style(hint))
			require.NoError(t, err)
			assert.Equal(t, want.FieldID, got.FieldID, "hint %q", style(hint))
		}
	}
}

func TestResolve_AliasesIgnoreMissingTargets(t *testing.T) {
	s, err := model.NewSchema("alias", model.Section{Name: "A", Fields: []model.FieldDescriptor{
		{ID: "nickname", Label: "Nickname", Type: model.FieldTypeText},
	}})
	require.NoError(t, err)

	r := resolve.New(s, resolve.WithAliases(map[string]string{
		"Nick":  "nickname",
		"ghost": "doesNotExist",
	}))

	got, err := r.Resolve("nick")
	require.NoError(t, err)
	assert.Equal(t, resolve.StrategyAlias, got.Strategy)

	_, err = r.Resolve("ghost")
	assert.ErrorIs(t, err, resolve.ErrUnresolvedField)
}

func TestResolve_EmptySchema(t *testing.T) {
	s, err := model.NewSchema("empty", model.Section{Name: "Review"})
	require.NoError(t, err)

	_, err = resolve.New(s).Resolve("anything")
	assert.ErrorIs(t, err, resolve.ErrEmptySchema)
}
