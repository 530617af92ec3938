package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{"Relative path", "https://justjoin.it/", "/job-offer/acme-qa-lodz", "https://justjoin.it/job-offer/acme-qa-lodz"},
		{"Absolute href with query", "https://www.pracuj.pl/", "https://www.pracuj.pl/praca/tester,oferta,100?s=1", "https://www.pracuj.pl/praca/tester,oferta,100"},
		{"Surrounding whitespace", "https://justjoin.it/", "  /job-offer/x \n", "https://justjoin.it/job-offer/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveURL(tt.base, tt.href))
		})
	}
}

func TestSearchParams_Validate(t *testing.T) {
	p, err := SearchParams{Keywords: "  python test ", Location: " Łódź"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, SearchParams{Keywords: "python test", Location: "Łódź"}, p)

	_, err = SearchParams{Keywords: "python", Location: "  "}.Validate()
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = SearchParams{Location: "Łódź"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestStepError(t *testing.T) {
	err := &StepError{Site: "Pracuj", Step: "search", Err: ErrNavigation}

	assert.Equal(t, "Pracuj: search: navigation failed", err.Error())
	assert.ErrorIs(t, err, ErrNavigation)
}
