package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    Code
		wantErr bool
	}{
		"plain":           {input: "es", want: Spanish},
		"regional":        {input: "pt-BR", want: PortugueseBR},
		"underscore form": {input: "pt_PT", want: PortuguesePT},
		"whitespace":      {input: " ja ", want: Japanese},
		"unknown":         {input: "fi", wantErr: true},
		"empty":           {input: "", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseList(t *testing.T) {
	codes, err := ParseList("es, fr,pt-BR")
	assert.NoError(t, err)
	assert.Equal(t, []Code{Spanish, French, PortugueseBR}, codes)

	_, err = ParseList("es,klingon")
	assert.Error(t, err)

	_, err = ParseList(" , ")
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "es", Spanish.Key())
	assert.Equal(t, "pt_BR", PortugueseBR.Key())
	assert.Equal(t, "pt_PT", PortuguesePT.Key())
}
