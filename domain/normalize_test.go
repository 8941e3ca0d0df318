package domain_test

import (
	"testing"

	"github.com/tradestreak/wall-street-service/domain"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMemberID(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple name", "Tommy Tuberville", "tommy-tuberville"},
		{"honorific with period", "Dr. John Smith", "dr-john-smith"},
		{"apostrophe and comma", "O'Brien, Patrick", "obrien-patrick"},
		{"underscores", "nancy_pelosi", "nancy-pelosi"},
		{"mixed whitespace", "  Jon\tOssoff ", "jon-ossoff"},
		{"hyphen runs collapse", "Jean--Pierre", "jean-pierre"},
		{"leading trailing hyphens trimmed", "-marco rubio-", "marco-rubio"},
		{"unicode stripped", "José María", "jos-mara"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.NormalizeMemberID(tc.in))
		})
	}
}

func TestNormalizeMemberID_Idempotent(t *testing.T) {
	inputs := []string{"Tommy Tuberville", "Dr. John Smith", "O'Brien, Patrick", "nancy_pelosi"}
	for _, in := range inputs {
		once := domain.NormalizeMemberID(in)
		assert.Equal(t, once, domain.NormalizeMemberID(once), "normalize must be idempotent for %q", in)
	}
}

func TestAlternateMemberID(t *testing.T) {
	assert.Equal(t, "tommy_tuberville", domain.AlternateMemberID("tommy-tuberville"))
	assert.Equal(t, "tommy-tuberville", domain.AlternateMemberID("tommy_tuberville"))
	assert.Equal(t, "plain", domain.AlternateMemberID("plain"))
}
