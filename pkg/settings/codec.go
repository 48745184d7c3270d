package settings

import (
	"encoding/json"
	"fmt"

	"howett.net/plist"
)

// Codec serializes a settings record to and from its file representation.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Extension is the file extension, including the leading dot.
	Extension() string
}

var (
	// PlistCodec writes XML property lists.
	PlistCodec Codec = plistCodec{format: plist.XMLFormat}
	// JSONCodec writes indented JSON.
	JSONCodec Codec = jsonCodec{}
)

// CodecByName returns the codec registered under name ("plist" or "json").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "plist":
		return PlistCodec, nil
	case "json":
		return JSONCodec, nil
	default:
		return nil, fmt.Errorf("unknown settings format: %s", name)
	}
}

type plistCodec struct {
	format int
}

func (c plistCodec) Marshal(v any) ([]byte, error) {
	return plist.MarshalIndent(v, c.format, "\t")
}

func (c plistCodec) Unmarshal(data []byte, v any) error {
	_, err := plist.Unmarshal(data, v)
	return err
}

func (c plistCodec) Extension() string {
	return ".plist"
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Extension() string {
	return ".json"
}
