package render

// StudentInfo carries the optional identity block printed at the top of a
// rendered document. Any subset of fields may be set; it is supplied per
// render call and never persisted.
type StudentInfo struct {
	Name       string
	Matricule  string
	School     string
	Department string
	Level      string
}

type letterheadLine struct {
	Label string
	Value string
}

// letterheadLines returns the label/value pairs to print, in fixed order.
// Absent fields produce no line at all.
func letterheadLines(info *StudentInfo) []letterheadLine {
	if info == nil {
		return nil
	}

	fields := []letterheadLine{
		{"Name", info.Name},
		{"Matricule No", info.Matricule},
		{"School", info.School},
		{"Department", info.Department},
		{"Level", info.Level},
	}

	lines := make([]letterheadLine, 0, len(fields))
	for _, field := range fields {
		if field.Value != "" {
			lines = append(lines, field)
		}
	}

	return lines
}
