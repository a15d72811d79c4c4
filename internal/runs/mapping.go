package runs

import (
	"encoding/json"

	"github.com/avidor/statex/pkg/query"
	"github.com/avidor/statex/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "extraction_runs", "r").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("seq", "Seq").
	Project("extraction", "Extraction").
	Project("report", "Report").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "Seq",
	Descending: true,
}

func scanRun(s repository.Scanner) (Run, error) {
	var (
		r          Run
		extraction []byte
		report     []byte
	)

	if err := s.Scan(
		&r.ID,
		&r.DocumentID,
		&r.Seq,
		&extraction,
		&report,
		&r.CreatedAt,
	); err != nil {
		return r, err
	}

	if err := json.Unmarshal(extraction, &r.Extraction); err != nil {
		return r, err
	}
	if err := json.Unmarshal(report, &r.Report); err != nil {
		return r, err
	}

	return r, nil
}
