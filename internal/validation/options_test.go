package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*domain.Options)
		wantFields []string
	}{
		{name: "defaults are valid", mutate: func(*domain.Options) {}},
		{
			name:   "every allowed combination value",
			mutate: func(o *domain.Options) { o.MissingStrategy, o.OutlierMethod, o.OutlierAction, o.Normalization = "zero", "zscore", "remove", "none" },
		},
		{
			name:       "bogus missing strategy",
			mutate:     func(o *domain.Options) { o.MissingStrategy = "bogus" },
			wantFields: []string{"missing_strategy"},
		},
		{
			name:       "empty outlier method",
			mutate:     func(o *domain.Options) { o.OutlierMethod = "" },
			wantFields: []string{"outlier_method"},
		},
		{
			name: "several failures at once",
			mutate: func(o *domain.Options) {
				o.OutlierAction = "clip"
				o.Normalization = "log"
			},
			wantFields: []string{"outlier_action", "normalization"},
		},
		{
			name:       "blank subset entry",
			mutate:     func(o *domain.Options) { o.DuplicateSubset = []string{"a", ""} },
			wantFields: []string{"duplicate_subset[1]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := domain.DefaultOptions()
			tt.mutate(&opts)

			err := ValidateOptions(opts)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrInvalidOptions)
			var oe *OptionsError
			require.True(t, errors.As(err, &oe))
			var got []string
			for _, f := range oe.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestValidateOptions_MessageNamesAllowedValues(t *testing.T) {
	opts := domain.DefaultOptions()
	opts.MissingStrategy = "bogus"

	err := ValidateOptions(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_strategy must be one of: mean, median, zero")
	assert.Contains(t, err.Error(), `"bogus"`)
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]interface{}
		want    domain.Options
		wantErr bool
	}{
		{
			name: "empty object takes defaults",
			raw:  map[string]interface{}{},
			want: domain.DefaultOptions(),
		},
		{
			name: "partial override",
			raw: map[string]interface{}{
				"missing_strategy": "median",
				"duplicate_subset": []interface{}{"a", "b"},
				"normalization":    nil,
			},
			want: domain.Options{
				MissingStrategy: "median",
				OutlierMethod:   "iqr",
				OutlierAction:   "cap",
				DuplicateSubset: []string{"a", "b"},
				Normalization:   "standard",
			},
		},
		{
			name: "values are trimmed",
			raw:  map[string]interface{}{"outlier_action": " remove "},
			want: domain.Options{
				MissingStrategy: "mean",
				OutlierMethod:   "iqr",
				OutlierAction:   "remove",
				Normalization:   "standard",
			},
		},
		{
			name:    "bogus value",
			raw:     map[string]interface{}{"missing_strategy": "bogus"},
			wantErr: true,
		},
		{
			name:    "non-string value",
			raw:     map[string]interface{}{"outlier_method": 3.0},
			wantErr: true,
		},
		{
			name: "single column subset",
			raw:  map[string]interface{}{"duplicate_subset": " a "},
			want: func() domain.Options {
				o := domain.DefaultOptions()
				o.DuplicateSubset = []string{"a"}
				return o
			}(),
		},
		{
			name: "blank subset string",
			raw:  map[string]interface{}{"duplicate_subset": ""},
			want: domain.DefaultOptions(),
		},
		{
			name:    "subset neither string nor list",
			raw:     map[string]interface{}{"duplicate_subset": 3.0},
			wantErr: true,
		},
		{
			name:    "subset with non-string entry",
			raw:     map[string]interface{}{"duplicate_subset": []interface{}{"a", 1.0}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOptions(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOptions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptionsOver(t *testing.T) {
	base := domain.Options{
		MissingStrategy: "median",
		OutlierMethod:   "zscore",
		OutlierAction:   "remove",
		Normalization:   "none",
	}

	opts, err := ParseOptionsOver(base, map[string]interface{}{"normalization": "minmax"})
	require.NoError(t, err)
	assert.Equal(t, "median", opts.MissingStrategy)
	assert.Equal(t, "zscore", opts.OutlierMethod)
	assert.Equal(t, "remove", opts.OutlierAction)
	assert.Equal(t, "minmax", opts.Normalization)

	_, err = ParseOptionsOver(base, map[string]interface{}{"missing_strategy": "bogus"})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
