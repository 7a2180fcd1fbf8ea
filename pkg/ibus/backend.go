// Package ibus switches IBus engines over D-Bus.
package ibus

import (
	"codeberg.org/miketth/escswitch/pkg/inputsource"
	"errors"
	"fmt"
	"github.com/godbus/dbus/v5"
	"golang.org/x/text/language"
	"strings"
)

const (
	Service   = "org.freedesktop.IBus"
	Path      = "/org/freedesktop/IBus"
	Interface = "org.freedesktop.IBus"
)

var ErrBadEngineDesc = errors.New("malformed engine description")

type busObject interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	GetProperty(p string) (dbus.Variant, error)
}

type EngineDesc struct {
	Name     string
	LongName string
	Language string
}

// Backend treats every configured IBus engine as an input source. The engine
// name is the source id.
type Backend struct {
	bus     busObject
	engines []string
}

func NewBackend(conn *dbus.Conn, engines []string) *Backend {
	return newBackend(conn.Object(Service, Path), engines)
}

func newBackend(bus busObject, engines []string) *Backend {
	return &Backend{
		bus:     bus,
		engines: engines,
	}
}

func (b *Backend) ListSources() ([]inputsource.InputSource, error) {
	var descs []dbus.Variant
	err := b.bus.Call(Interface+".GetEnginesByNames", 0, b.engines).Store(&descs)
	if err != nil {
		return nil, fmt.Errorf("get engines: %w", err)
	}

	out := make([]inputsource.InputSource, 0, len(descs))
	for _, v := range descs {
		desc, err := parseEngineDesc(v)
		if err != nil {
			return nil, err
		}
		out = append(out, desc.source())
	}

	return out, nil
}

func (b *Backend) CurrentSource() (inputsource.InputSource, error) {
	v, err := b.bus.GetProperty(Interface + ".GlobalEngine")
	if err != nil {
		// ibus before 1.5.18 only has the method
		err = b.bus.Call(Interface+".GetGlobalEngine", 0).Store(&v)
	}
	if err != nil {
		return inputsource.InputSource{}, fmt.Errorf("get global engine: %w", err)
	}

	desc, err := parseEngineDesc(v)
	if err != nil {
		return inputsource.InputSource{}, err
	}

	return desc.source(), nil
}

func (b *Backend) Select(id string) error {
	err := b.bus.Call(Interface+".SetGlobalEngine", 0, id).Err
	if err != nil {
		return fmt.Errorf("set global engine %s: %w", id, err)
	}
	return nil
}

// parseEngineDesc reads the serialized IBusEngineDesc struct:
// (name, attachments, engine name, long name, description, language, ...)
func parseEngineDesc(v dbus.Variant) (EngineDesc, error) {
	fields, ok := v.Value().([]interface{})
	if !ok || len(fields) < 6 {
		return EngineDesc{}, fmt.Errorf("%w: %s", ErrBadEngineDesc, v.Signature())
	}

	if typeName, _ := fields[0].(string); typeName != "IBusEngineDesc" {
		return EngineDesc{}, fmt.Errorf("%w: type %v", ErrBadEngineDesc, fields[0])
	}

	var desc EngineDesc
	for i, dst := range map[int]*string{2: &desc.Name, 3: &desc.LongName, 5: &desc.Language} {
		s, ok := fields[i].(string)
		if !ok {
			return EngineDesc{}, fmt.Errorf("%w: field %d is %T", ErrBadEngineDesc, i, fields[i])
		}
		*dst = s
	}

	return desc, nil
}

func (d EngineDesc) source() inputsource.InputSource {
	var tags []string
	if tag, ok := languageTag(d.Language); ok {
		tags = append(tags, tag)
	}

	name := d.LongName
	if name == "" {
		name = d.Name
	}

	return inputsource.InputSource{
		ID:           d.Name,
		DisplayName:  name,
		LanguageTags: tags,
		IsSelectable: true,
	}
}

// languageTag turns ibus locale names like zh_CN into BCP 47 tags.
func languageTag(lang string) (string, bool) {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" || lang == "other" {
		return "", false
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return "", false
	}

	return tag.String(), true
}
