package client

import (
	"fmt"

	jsonitor "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/vexscan/vexscan-client/pkg/apierrors"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

// Document is a parsed JSON response body. Field access goes through explicit,
// fallible accessors rather than free-form map indexing, so a missing or
// mistyped field is always a visible error at the point of extraction.
type Document struct {
	raw []byte
}

func newDocument(raw []byte) Document {
	return Document{raw: raw}
}

// Raw returns the JSON text backing the document.
func (d Document) Raw() []byte {
	return d.raw
}

// Has reports whether a field exists at the given path.
func (d Document) Has(path string) bool {
	return gjson.GetBytes(d.raw, path).Exists()
}

// StringField returns the string value at the given path.
func (d Document) StringField(path string) (string, error) {
	res := gjson.GetBytes(d.raw, path)
	if !res.Exists() {
		return "", apierrors.ErrAPI.Msg(fmt.Sprintf("response has no %q field", path))
	}
	if res.Type != gjson.String {
		return "", apierrors.ErrAPI.Msg(fmt.Sprintf("response field %q is not a string", path))
	}
	return res.String(), nil
}

// IntField returns the integer value at the given path.
func (d Document) IntField(path string) (int64, error) {
	res := gjson.GetBytes(d.raw, path)
	if !res.Exists() {
		return 0, apierrors.ErrAPI.Msg(fmt.Sprintf("response has no %q field", path))
	}
	if res.Type != gjson.Number {
		return 0, apierrors.ErrAPI.Msg(fmt.Sprintf("response field %q is not a number", path))
	}
	return res.Int(), nil
}

// Array returns the elements of the array at the given path, each as its own
// document.
func (d Document) Array(path string) ([]Document, error) {
	res := gjson.GetBytes(d.raw, path)
	if !res.Exists() {
		return nil, apierrors.ErrAPI.Msg(fmt.Sprintf("response has no %q field", path))
	}
	if !res.IsArray() {
		return nil, apierrors.ErrAPI.Msg(fmt.Sprintf("response field %q is not an array", path))
	}
	elems := res.Array()
	docs := make([]Document, 0, len(elems))
	for _, elem := range elems {
		docs = append(docs, newDocument([]byte(elem.Raw)))
	}
	return docs, nil
}

// Decode unmarshals the document into v.
func (d Document) Decode(v any) error {
	return json.Unmarshal(d.raw, v)
}

// Pretty returns the document indented for diagnostics. Falls back to the raw
// text if the body cannot be re-encoded.
func (d Document) Pretty() string {
	var v any
	if err := json.Unmarshal(d.raw, &v); err != nil {
		return string(d.raw)
	}
	out, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return string(d.raw)
	}
	return string(out)
}
