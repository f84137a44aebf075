package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Breaking:  News!!  ", "breaking-news"},
		{"Yeni il şənliyi Bakıda", "yeni-il-senliyi-bakida"},
		{"Ərzaq qiymətləri üzrə hesabat", "erzaq-qiymetleri-uzre-hesabat"},
		{"2026-ci il büdcəsi", "2026-ci-il-budcesi"},
		{"!!!", "post"},
		{"", "post"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}
