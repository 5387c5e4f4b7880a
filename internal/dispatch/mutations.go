package dispatch

import (
	"github.com/preston-bernstein/f1-data-service/internal/document"
	"github.com/preston-bernstein/f1-data-service/internal/request"
)

func createTeam(doc *document.Document, req request.Document) error {
	team, err := req.TeamRecord()
	if err != nil {
		return err
	}
	return doc.AppendTeam(team)
}

func updateTeam(doc *document.Document, req request.Document) error {
	if err := req.RequireTeam(); err != nil {
		return err
	}
	team, err := req.TeamRecord()
	if err != nil {
		return err
	}
	idx, ok := doc.FindTeam(req.Team)
	if !ok {
		return notFoundError(msgTeamNotFound)
	}
	return doc.ReplaceTeam(idx, team)
}

func deleteTeam(doc *document.Document, req request.Document) error {
	if err := req.RequireTeam(); err != nil {
		return err
	}
	idx, ok := doc.FindTeam(req.Team)
	if !ok {
		return notFoundError(msgTeamNotFound)
	}
	return doc.DeleteTeam(idx)
}

// patchDriver only looks inside the first team with the requested name.
func patchDriver(doc *document.Document, req request.Document) error {
	if err := req.RequireTeam(); err != nil {
		return err
	}
	if err := req.RequireDriver(); err != nil {
		return err
	}
	fields, err := req.Fields()
	if err != nil {
		return err
	}
	teamIdx, ok := doc.FindTeam(req.Team)
	if !ok {
		return notFoundError(msgTeamNotFound)
	}
	driverIdx, ok := doc.FindDriver(teamIdx, req.Driver)
	if !ok {
		return notFoundError(msgDriverNotFound)
	}
	return doc.MergeDriver(teamIdx, driverIdx, fields)
}
