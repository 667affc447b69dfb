package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

func TestParseTOML(t *testing.T) {
	cfg, err := ParseTOML([]byte(`
[Video]
width = 1280
height = 720
title = "demo"

[Render]
page_vertices = 4096
circle_detail = 48
near = -50.0
intermediary_buffer = true
clear_color = "#102030"
`))
	require.NoError(t, err)
	assert.Equal(t, Video{Width: 1280, Height: 720, Title: "demo", VSync: true}, cfg.Video)
	assert.Equal(t, 4096, cfg.Render.PageVertices)
	assert.Equal(t, 48, cfg.Render.CircleDetail)
	assert.Equal(t, float32(-50), cfg.Render.Near)
	assert.Equal(t, Default().Render.Far, cfg.Render.Far)
	assert.True(t, cfg.Render.IntermediaryBuffer)
	assert.Equal(t, gfx.RGBA(0x10, 0x20, 0x30, 0xff), cfg.Render.ClearColor)
}

func TestParseTOMLErrors(t *testing.T) {
	_, err := ParseTOML([]byte("[Video]\nwidht = 3\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ParseTOML([]byte("[Render]\nclear_color = \"#zz\"\n"))
	assert.Error(t, err)

	_, err = ParseTOML([]byte("[Video\n"))
	assert.Error(t, err)
}

func TestSectionName(t *testing.T) {
	tests := []struct {
		line, name, sub string
	}{
		{"[Video]", "video", ""},
		{"[Render] ; comment", "render", ""},
		{"[Begin Action]", "begin", "action"},
		{"[broken", "", ""},
		{"width = 3", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		name, sub := SectionName(tt.line)
		assert.Equal(t, tt.name, name, tt.line)
		assert.Equal(t, tt.sub, sub, tt.line)
	}
}

func TestIniSectionParse(t *testing.T) {
	lines := SplitAndTrim("Width = 10\nwidth = 20 ; ignored\n; only a comment\nTitle=  spaced out  \nflag\n[Next]\nx = 1", "\n")
	i := 0
	is := NewIniSection()
	is.Parse(lines, &i)
	assert.Equal(t, 5, i)
	assert.Equal(t, IniSection{"width": "10", "title": "spaced out"}, is)
}

func TestParseINI(t *testing.T) {
	cfg, err := ParseINI("\ufeff; demo settings\r\n" +
		"[Video]\r\n" +
		"Width = 800\r\n" +
		"Height = 600 ; window\r\n" +
		"Title = \"ini demo\"\r\n" +
		"VSync = 0\r\n" +
		"[Sound]\r\n" +
		"Volume = 11\r\n" +
		"[Render]\r\n" +
		"Max_Texture_Units = 4\r\n" +
		"Far = 250\r\n" +
		"Debug = true\r\n" +
		"Clear_Color = #ff000080\r\n" +
		"[Video]\r\n" +
		"Width = 1\r\n")
	require.NoError(t, err)
	assert.Equal(t, Video{Width: 800, Height: 600, Title: "ini demo"}, cfg.Video)
	assert.Equal(t, 4, cfg.Render.MaxTextureUnits)
	assert.Equal(t, float32(250), cfg.Render.Far)
	assert.True(t, cfg.Render.Debug)
	assert.Equal(t, gfx.RGBA(0xff, 0, 0, 0x80), cfg.Render.ClearColor)
	assert.Equal(t, Default().Render.PageVertices, cfg.Render.PageVertices)
}

func TestParseINIErrors(t *testing.T) {
	_, err := ParseINI("[Video]\nwidth = wide\nheight = tall\n")
	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorContains(t, err, "width")
	assert.ErrorContains(t, err, "height")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Video.Title = "saved"
	cfg.Render.CircleDetail = 12
	cfg.Render.ClearColor = gfx.Red
	path := filepath.Join(dir, "app.toml")
	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	ini := filepath.Join(dir, "app.ini")
	require.NoError(t, os.WriteFile(ini, []byte("[Video]\nwidth = 0\n"), 0o644))
	_, err = Load(ini)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(filepath.Join(dir, "app.yaml"))
	assert.Error(t, err)
	other := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0o644))
	_, err = Load(other)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
