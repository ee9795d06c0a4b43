package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTranslator_RendersTemplates(t *testing.T) {
	tr := NewTranslator("en", zap.NewNop())

	got := tr.T("en", "mail_subject", map[string]any{"Event": "RepoGenesis", "ID": "OSW_RG01"})

	assert.Equal(t, "[RepoGenesis] Your QR Code - OSW_RG01", got)
}

func TestTranslator_French(t *testing.T) {
	tr := NewTranslator("en", zap.NewNop())

	assert.Equal(t, "Bonjour Asha,", tr.T("fr", "mail_greeting", map[string]any{"Name": "Asha"}))
}

func TestTranslator_FallsBackToDefaultLocale(t *testing.T) {
	tr := NewTranslator("fr", zap.NewNop())

	assert.Equal(t, "Bonjour Asha,", tr.T("de", "mail_greeting", map[string]any{"Name": "Asha"}))
}

func TestTranslator_UnknownKey(t *testing.T) {
	tr := NewTranslator("en", zap.NewNop())

	assert.Equal(t, "mail_missing", tr.T("en", "mail_missing", nil))
	assert.Equal(t, "", tr.T("en", "", nil))
}

func TestTranslator_BadDefaultLocale(t *testing.T) {
	tr := NewTranslator("??", zap.NewNop())

	assert.Equal(t, "Hi Asha,", tr.T("", "mail_greeting", map[string]any{"Name": "Asha"}))
}
