package document

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	keyTeams   = "teams"
	keyName    = "name"
	keyDrivers = "drivers"
)

// ErrInvalid marks a store payload that is not shaped like {"teams": [...]}.
var ErrInvalid = errors.New("invalid store document")

// Document holds the raw store JSON. Mutations rewrite only the touched
// subtree, so key order and untouched values survive a round trip.
type Document struct {
	raw []byte
}

// Parse validates data and wraps it in a Document.
func Parse(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalid)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalid)
	}
	if !root.Get(keyTeams).IsArray() {
		return nil, fmt.Errorf("%w: %q must be an array", ErrInvalid, keyTeams)
	}
	return &Document{raw: append([]byte(nil), data...)}, nil
}

// Bytes returns the current document JSON.
func (d *Document) Bytes() []byte {
	if d == nil {
		return nil
	}
	return d.raw
}

// Teams returns the team records in sequence order.
func (d *Document) Teams() []gjson.Result {
	return gjson.GetBytes(d.raw, keyTeams).Array()
}

// FindTeam returns the index of the first team whose name equals name.
func (d *Document) FindTeam(name string) (int, bool) {
	return firstNamed(d.Teams(), name)
}

// FindDriver returns the index of the first driver named name inside the team at teamIdx.
func (d *Document) FindDriver(teamIdx int, name string) (int, bool) {
	drivers := gjson.GetBytes(d.raw, driversPath(teamIdx))
	if !drivers.IsArray() {
		return 0, false
	}
	return firstNamed(drivers.Array(), name)
}

// AppendTeam adds team to the end of the teams sequence.
func (d *Document) AppendTeam(team []byte) error {
	return d.setRaw(keyTeams+".-1", team)
}

// ReplaceTeam swaps the team at idx for team, keeping its position.
func (d *Document) ReplaceTeam(idx int, team []byte) error {
	if err := d.checkTeam(idx); err != nil {
		return err
	}
	return d.setRaw(teamPath(idx), team)
}

// DeleteTeam removes the team at idx; remaining teams keep their order.
func (d *Document) DeleteTeam(idx int) error {
	if err := d.checkTeam(idx); err != nil {
		return err
	}
	out, err := sjson.DeleteBytes(d.raw, teamPath(idx))
	if err != nil {
		return fmt.Errorf("delete team %d: %w", idx, err)
	}
	d.raw = out
	return nil
}

// MergeDriver sets every field on the driver at (teamIdx, driverIdx).
// Existing keys are overwritten in place, new keys are appended, and
// keys not named in fields are left alone.
func (d *Document) MergeDriver(teamIdx, driverIdx int, fields []Field) error {
	path := fmt.Sprintf("%s.%d", driversPath(teamIdx), driverIdx)
	driver := gjson.GetBytes(d.raw, path)
	if !driver.IsObject() {
		return fmt.Errorf("%w: driver %d of team %d is not an object", ErrInvalid, driverIdx, teamIdx)
	}
	return d.setRaw(path, mergeObject(driver, fields))
}

func (d *Document) checkTeam(idx int) error {
	if idx < 0 || idx >= len(d.Teams()) {
		return fmt.Errorf("team index %d out of range", idx)
	}
	return nil
}

func (d *Document) setRaw(path string, value []byte) error {
	out, err := sjson.SetRawBytes(d.raw, path, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	d.raw = out
	return nil
}

func firstNamed(items []gjson.Result, name string) (int, bool) {
	for i, item := range items {
		n := item.Get(keyName)
		if n.Type == gjson.String && n.Str == name {
			return i, true
		}
	}
	return 0, false
}

func teamPath(idx int) string {
	return fmt.Sprintf("%s.%d", keyTeams, idx)
}

func driversPath(teamIdx int) string {
	return fmt.Sprintf("%s.%d.%s", keyTeams, teamIdx, keyDrivers)
}
