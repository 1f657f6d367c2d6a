package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeBaseName(t *testing.T) {
	cases := map[string]string{
		"diploma.pdf":            "diploma",
		"My Diploma 2020.PNG":    "My_Diploma_2020",
		"../../etc/passwd":       "passwd",
		`C:\Users\jane\cert.jpg`: "cert",
		"résumé final.pdf":       "rsum_final",
		"archive.tar.gz":         "archive.tar",
		"...":                    "file",
		"":                       "file",
		"name;rm -rf *.svg":      "namerm_-rf_",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeBaseName(in), "input %q", in)
	}
}

func TestSanitizeBaseName_Truncates(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, SanitizeBaseName(string(long)+".pdf"), maxBaseNameLength)
}
