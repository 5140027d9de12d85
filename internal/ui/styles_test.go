package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitTheme(t *testing.T) {
	t.Cleanup(func() { InitTheme(string(ThemeDark)) })

	InitTheme("light")
	assert.Equal(t, ThemeLight, GetCurrentTheme())
	assert.Equal(t, lightColors.Accent, colors.Accent)

	InitTheme("system")
	assert.Equal(t, ThemeDark, GetCurrentTheme(), "unresolved names fall back to dark")
	assert.Equal(t, darkColors, colors)
}

func TestThemeFor(t *testing.T) {
	assert.Equal(t, "dark", themeFor(true))
	assert.Equal(t, "light", themeFor(false))
}

func TestKeyHintsHaveHelp(t *testing.T) {
	for _, k := range defaultKeyMap().hints() {
		assert.NotEmpty(t, k.Help().Key)
		assert.NotEmpty(t, k.Help().Desc)
	}
}
