package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leonkasovan/go-composer/packages/composer"
	"github.com/leonkasovan/go-composer/packages/gfx"
)

// SplitAndTrim splits str on sep and trims the white space around every
// piece.
func SplitAndTrim(str, sep string) (ss []string) {
	ss = strings.Split(str, sep)
	for i, s := range ss {
		ss[i] = strings.TrimSpace(s)
	}
	return
}

// SectionName parses a "[name sub]" header line into its lower-cased name
// and the rest. Lines that are not headers give two empty strings.
func SectionName(sec string) (string, string) {
	if len(sec) == 0 || sec[0] != '[' {
		return "", ""
	}
	sec = strings.TrimSpace(strings.SplitN(sec, ";", 2)[0])
	if sec[len(sec)-1] != ']' {
		return "", ""
	}
	sec = sec[1:strings.Index(sec, "]")]
	name, sub, _ := strings.Cut(sec, " ")
	return strings.ToLower(strings.TrimSpace(name)), strings.TrimSpace(sub)
}

// IniSection holds the keys of one section, lower-cased.
type IniSection map[string]string

func NewIniSection() IniSection {
	return IniSection(make(map[string]string))
}

// Parse reads "key = value" lines from lines[*i] up to the next header.
// Text after ';' is a comment; the first definition of a key wins.
func (is IniSection) Parse(lines []string, i *int) {
	for ; *i < len(lines); (*i)++ {
		if len(lines[*i]) > 0 && lines[*i][0] == '[' {
			break
		}
		line := strings.TrimSpace(strings.SplitN(lines[*i], ";", 2)[0])
		ia := strings.IndexAny(line, "= \t")
		if ia <= 0 {
			continue
		}
		name := strings.ToLower(line[:ia])
		var data string
		if ia = strings.Index(line, "="); ia >= 0 {
			data = strings.TrimSpace(line[ia+1:])
		}
		if _, ok := is[name]; !ok {
			is[name] = data
		}
	}
}

func (is IniSection) read(key string, parse func(string) error) error {
	s, ok := is[key]
	if !ok {
		return nil
	}
	delete(is, key)
	if err := parse(s); err != nil {
		return fmt.Errorf("%w: %s = %q: %v", ErrInvalid, key, s, err)
	}
	return nil
}

func (is IniSection) readInt(key string, dst *int) error {
	return is.read(key, func(s string) (err error) {
		*dst, err = strconv.Atoi(s)
		return
	})
}

func (is IniSection) readFloat(key string, dst *float32) error {
	return is.read(key, func(s string) error {
		f, err := strconv.ParseFloat(s, 32)
		*dst = float32(f)
		return err
	})
}

func (is IniSection) readBool(key string, dst *bool) error {
	return is.read(key, func(s string) (err error) {
		*dst, err = strconv.ParseBool(s)
		return
	})
}

func (is IniSection) readString(key string, dst *string) error {
	return is.read(key, func(s string) error {
		*dst = strings.Trim(s, `"`)
		return nil
	})
}

func (is IniSection) readColor(key string, dst *gfx.Color) error {
	return is.read(key, func(s string) (err error) {
		*dst, err = gfx.ParseColor(s)
		return
	})
}

// warnUnknown logs the keys no reader consumed.
func (is IniSection) warnUnknown(section string) {
	for key := range is {
		gfx.Logger().Warn("config: unknown key", "section", section, "key", key)
	}
}

func (v *Video) applyINI(is IniSection) error {
	return errors.Join(
		is.readInt("width", &v.Width),
		is.readInt("height", &v.Height),
		is.readString("title", &v.Title),
		is.readBool("vsync", &v.VSync),
	)
}

func applyRenderINI(c *composer.Config, is IniSection) error {
	return errors.Join(
		is.readInt("page_vertices", &c.PageVertices),
		is.readInt("retire_frames", &c.RetireFrames),
		is.readInt("max_texture_units", &c.MaxTextureUnits),
		is.readInt("circle_detail", &c.CircleDetail),
		is.readFloat("near", &c.Near),
		is.readFloat("far", &c.Far),
		is.readBool("debug", &c.Debug),
		is.readBool("intermediary_buffer", &c.IntermediaryBuffer),
		is.readInt("intermediary_width", &c.IntermediaryWidth),
		is.readInt("intermediary_height", &c.IntermediaryHeight),
		is.readColor("clear_color", &c.ClearColor),
	)
}

// ParseINI decodes the [Video] and [Render] sections of text over Default.
// Only the first occurrence of a section is read; other sections are
// ignored.
func ParseINI(text string) (Config, error) {
	cfg := Default()
	text = strings.TrimPrefix(text, "\ufeff")
	lines := SplitAndTrim(text, "\n")
	seen := make(map[string]bool)
	var errs []error
	for i := 0; i < len(lines); {
		name, _ := SectionName(lines[i])
		i++
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		is := NewIniSection()
		is.Parse(lines, &i)
		switch name {
		case "video":
			errs = append(errs, cfg.Video.applyINI(is))
		case "render":
			errs = append(errs, applyRenderINI(&cfg.Render, is))
		default:
			gfx.Logger().Debug("config: section ignored", "section", name)
			continue
		}
		is.warnUnknown(name)
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
