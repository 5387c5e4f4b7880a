package request

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/preston-bernstein/f1-data-service/internal/document"
)

// ErrInvalid marks a request document that cannot drive the requested operation.
var ErrInvalid = errors.New("invalid request document")

// Document is the ephemeral request: the target team and driver plus a body.
type Document struct {
	Team   string
	Driver string
	Body   gjson.Result
}

// Load reads and parses the request file at path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Parse(data)
}

// Parse decodes a request document of the form {"team": .., "driver": .., "body": ..}.
func Parse(data []byte) (Document, error) {
	if !gjson.ValidBytes(data) {
		return Document{}, fmt.Errorf("%w: malformed JSON", ErrInvalid)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Document{}, fmt.Errorf("%w: expected an object", ErrInvalid)
	}
	team, err := optionalString(root, "team")
	if err != nil {
		return Document{}, err
	}
	driver, err := optionalString(root, "driver")
	if err != nil {
		return Document{}, err
	}
	return Document{Team: team, Driver: driver, Body: root.Get("body")}, nil
}

// New builds a request from already-routed parts, validating body as JSON.
func New(team, driver string, body []byte) (Document, error) {
	doc := Document{Team: team, Driver: driver}
	if len(body) == 0 {
		return doc, nil
	}
	if !gjson.ValidBytes(body) {
		return Document{}, fmt.Errorf("%w: body is not valid JSON", ErrInvalid)
	}
	doc.Body = gjson.ParseBytes(body)
	return doc, nil
}

// TeamRecord builds the team stored by CREATE and UPDATE from body.name and body.drivers.
func (d Document) TeamRecord() ([]byte, error) {
	if !d.Body.IsObject() {
		return nil, fmt.Errorf("%w: body must be an object", ErrInvalid)
	}
	team, err := document.NewTeam(d.Body.Get("name"), d.Body.Get("drivers"))
	if err != nil {
		return nil, fmt.Errorf("%w: body %v", ErrInvalid, err)
	}
	return team, nil
}

// Fields returns the PATCH body members in order.
func (d Document) Fields() ([]document.Field, error) {
	fields, err := document.ObjectFields(d.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: body %v", ErrInvalid, err)
	}
	return fields, nil
}

// RequireTeam reports an error when the request names no team.
func (d Document) RequireTeam() error {
	if d.Team == "" {
		return fmt.Errorf("%w: %q is required", ErrInvalid, "team")
	}
	return nil
}

// RequireDriver reports an error when the request names no driver.
func (d Document) RequireDriver() error {
	if d.Driver == "" {
		return fmt.Errorf("%w: %q is required", ErrInvalid, "driver")
	}
	return nil
}

func optionalString(root gjson.Result, key string) (string, error) {
	v := root.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return "", nil
	}
	if v.Type != gjson.String {
		return "", fmt.Errorf("%w: %q must be a string", ErrInvalid, key)
	}
	return v.Str, nil
}
