// Package config holds the display and layout settings of a tree view.
//
// Settings travel with a layout as its "nodes_links" bag and can be loaded
// from a TOML file:
//
//	max_link_scale = 800
//	size_power = 0.6
//	node_collapsed_value = 2.5
//
//	[custom_colours]
//	ST131 = "#ff0000"
//
// Missing keys keep their defaults. Values are validated, never clamped.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/msttree/pkg/errors"
	"github.com/matzehuels/msttree/pkg/layout/radial"
	"github.com/matzehuels/msttree/pkg/tree/sizing"
)

// Settings is the nodes_links bag shared by the engines and renderers.
type Settings struct {
	MaxLinkLength          float64           `json:"max_link_length" bson:"max_link_length" toml:"max_link_length" validate:"finite,gte=0"`
	MaxLinkScale           float64           `json:"max_link_scale" bson:"max_link_scale" toml:"max_link_scale" validate:"finite,gt=0"`
	BaseNodeSize           float64           `json:"base_node_size" bson:"base_node_size" toml:"base_node_size" validate:"finite,gt=0"`
	SizePower              float64           `json:"size_power" bson:"size_power" toml:"size_power" validate:"finite,gte=0"`
	LogLinkScale           bool              `json:"log_link_scale" bson:"log_link_scale" toml:"log_link_scale"`
	LinkFontSize           float64           `json:"link_font_size" bson:"link_font_size" toml:"link_font_size" validate:"finite,gt=0"`
	ShowLinkLabels         bool              `json:"show_link_labels" bson:"show_link_labels" toml:"show_link_labels"`
	ShowNodeLabels         bool              `json:"show_node_labels" bson:"show_node_labels" toml:"show_node_labels"`
	NodeFontSize           float64           `json:"node_font_size" bson:"node_font_size" toml:"node_font_size" validate:"finite,gt=0"`
	CustomColours          map[string]string `json:"custom_colours" bson:"custom_colours" toml:"custom_colours" validate:"dive,keys,required,endkeys,iscolor"`
	HideLinkLength         float64           `json:"hide_link_length" bson:"hide_link_length" toml:"hide_link_length" validate:"finite,gte=0"`
	ShowIndividualSegments bool              `json:"show_individual_segments" bson:"show_individual_segments" toml:"show_individual_segments"`
	NodeCollapsedValue     float64           `json:"node_collapsed_value" bson:"node_collapsed_value" toml:"node_collapsed_value" validate:"finite,gte=0"`
	NodeTextValue          string            `json:"node_text_value" bson:"node_text_value" toml:"node_text_value" validate:"max=256"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		MaxLinkLength:  radial.DefaultMaxLinkLength,
		MaxLinkScale:   radial.DefaultLinkScale,
		BaseNodeSize:   sizing.DefaultBase,
		SizePower:      sizing.DefaultPower,
		LinkFontSize:   10,
		ShowNodeLabels: true,
		NodeFontSize:   14,
		CustomColours:  map[string]string{},
		HideLinkLength: radial.DefaultMaxLinkLength,
	}
}

// UnmarshalJSON decodes a possibly partial bag on top of the defaults.
// log_link_scale may be a bool or the string "true"/"false", which is how
// older saved views store it.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	p := plain(Default())
	aux := struct {
		*plain
		LogLinkScale looseBool `json:"log_link_scale"`
	}{plain: &p}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.LogLinkScale = bool(aux.LogLinkScale)
	*s = Settings(p)
	return nil
}

// looseBool decodes a JSON bool, a quoted bool or null (false).
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("log_link_scale: cannot use %s as bool", data)
	}
	*b = looseBool(v)
	return nil
}

// Parse decodes TOML settings on top of the defaults and validates them.
// Unknown keys are rejected.
func Parse(data []byte) (Settings, error) {
	s := Default()
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot parse settings")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Settings{}, errors.New(errors.ErrCodeInvalidConfig, "unknown setting %q", undecoded[0].String())
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads a TOML settings file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "settings file not found: %s", path)
		}
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot read settings file %s", path)
	}
	return Parse(data)
}

// Encode writes s as TOML.
func (s Settings) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "cannot encode settings")
	}
	return buf.Bytes(), nil
}

// LayoutOptions returns the radial layout parameters.
func (s Settings) LayoutOptions() radial.Options {
	return radial.Options{
		LinkScale:     s.MaxLinkScale,
		NodeSize:      s.BaseNodeSize,
		MaxLinkLength: s.MaxLinkLength,
		LogScale:      s.LogLinkScale,
	}
}

// SizingPolicy returns the node sizing policy. records maps entity IDs to
// the number of metadata records they carry and may be nil.
func (s Settings) SizingPolicy(records map[string]int) sizing.Policy {
	return sizing.Policy{Power: s.SizePower, Base: s.BaseNodeSize, Records: records}
}
