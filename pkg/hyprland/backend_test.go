package hyprland

import (
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"codeberg.org/miketth/escswitch/pkg/xkblayouts"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

const registryXML = `<xkbConfigRegistry>
  <layoutList>
    <layout>
      <configItem>
        <name>us</name>
        <description>English (US)</description>
        <languageList><iso639Id>eng</iso639Id></languageList>
      </configItem>
    </layout>
    <layout>
      <configItem>
        <name>cn</name>
        <description>Chinese</description>
        <languageList><iso639Id>chi</iso639Id></languageList>
      </configItem>
      <variantList>
        <variant>
          <configItem>
            <name>altgr-pinyin</name>
            <description>Hanyu Pinyin Letters (with AltGr dead keys)</description>
          </configItem>
        </variant>
      </variantList>
    </layout>
    <layout>
      <configItem>
        <name>de</name>
        <description>German</description>
        <languageList><iso639Id>ger</iso639Id></languageList>
      </configItem>
    </layout>
  </layoutList>
</xkbConfigRegistry>`

type fakeSwitcher struct {
	keyboards []Keyboard
	err       error
	switches  []string
}

func (f *fakeSwitcher) GetKeyboards() ([]Keyboard, error) {
	return f.keyboards, f.err
}

func (f *fakeSwitcher) SwitchToLayout(keyboard string, idx int) error {
	f.switches = append(f.switches, keyboard+":"+string(rune('0'+idx)))
	for i := range f.keyboards {
		if f.keyboards[i].Name == keyboard {
			f.keyboards[i].ActiveIndex = idx
		}
	}
	return nil
}

func newTestBackend(t *testing.T, keyboard string, kbs ...Keyboard) (*Backend, *fakeSwitcher) {
	t.Helper()
	registry, err := xkblayouts.Parse(strings.NewReader(registryXML))
	require.NoError(t, err)

	sw := &fakeSwitcher{keyboards: kbs}
	return NewBackend(sw, registry, keyboard), sw
}

func mainKeyboard() Keyboard {
	return Keyboard{
		Name:         "at-translated-set-2-keyboard",
		Layouts:      []string{"us", "cn", "de"},
		Variants:     []string{"", "altgr-pinyin", ""},
		ActiveKeymap: "English (US)",
		ActiveIndex:  -1,
		Main:         true,
	}
}

func TestBackendListSources(t *testing.T) {
	b, _ := newTestBackend(t, "", Keyboard{Name: "mouse-kbd", Layouts: []string{"us"}}, mainKeyboard())

	sources, err := b.ListSources()
	require.NoError(t, err)
	require.Len(t, sources, 3)

	assert.Equal(t, "us", sources[0].ID)
	assert.Equal(t, "English (US)", sources[0].DisplayName)
	assert.Equal(t, []string{"en"}, sources[0].LanguageTags)

	assert.Equal(t, "cn(altgr-pinyin)", sources[1].ID)
	assert.Equal(t, "Hanyu Pinyin Letters (with AltGr dead keys)", sources[1].DisplayName)
	assert.True(t, sources[1].IsCJKV())

	assert.Equal(t, []string{"de"}, sources[2].LanguageTags)
	assert.False(t, sources[2].IsCJKV())
}

func TestBackendCurrentSource(t *testing.T) {
	b, _ := newTestBackend(t, "", mainKeyboard())

	current, err := b.CurrentSource()
	require.NoError(t, err)
	assert.Equal(t, "us", current.ID)

	kb := mainKeyboard()
	kb.ActiveIndex = 1
	b, _ = newTestBackend(t, "", kb)
	current, err = b.CurrentSource()
	require.NoError(t, err)
	assert.Equal(t, "cn(altgr-pinyin)", current.ID)

	kb = mainKeyboard()
	kb.ActiveKeymap = "Klingon"
	b, _ = newTestBackend(t, "", kb)
	_, err = b.CurrentSource()
	assert.Error(t, err)
}

func TestBackendSelect(t *testing.T) {
	b, sw := newTestBackend(t, "", mainKeyboard())

	require.NoError(t, b.Select("cn(altgr-pinyin)"))
	assert.Equal(t, []string{"at-translated-set-2-keyboard:1"}, sw.switches)

	current, err := b.CurrentSource()
	require.NoError(t, err)
	assert.Equal(t, "cn(altgr-pinyin)", current.ID)

	err = b.Select("cn")
	assert.ErrorIs(t, err, inputsource.ErrUnknownSource)
}

func TestBackendNamedKeyboard(t *testing.T) {
	other := Keyboard{Name: "usb-keyboard", Layouts: []string{"de", "us"}, ActiveIndex: 0}
	b, sw := newTestBackend(t, "usb-keyboard", mainKeyboard(), other)

	require.NoError(t, b.Select("us"))
	assert.Equal(t, []string{"usb-keyboard:1"}, sw.switches)

	b, _ = newTestBackend(t, "missing", mainKeyboard())
	_, err := b.ListSources()
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestBackendFallsBackToFirstKeyboard(t *testing.T) {
	kb := mainKeyboard()
	kb.Main = false
	b, _ := newTestBackend(t, "", kb)

	sources, err := b.ListSources()
	require.NoError(t, err)
	assert.Len(t, sources, 3)
}

func TestBackendSwitcherError(t *testing.T) {
	b, sw := newTestBackend(t, "")
	sw.err = errors.New("socket gone")

	_, err := b.ListSources()
	assert.ErrorContains(t, err, "socket gone")
}
