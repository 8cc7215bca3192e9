package tui

// OutputOptions are the files written besides the subtitle
type OutputOptions struct {
	Report     bool // detected language, original text and full translation
	Transcript bool // original transcript as plain text
}

// RunOutputSelector asks which extra files to write. nil means cancelled.
func RunOutputSelector() (*OutputOptions, error) {
	options := []CheckboxOption{
		{Label: "Report with full translation (.txt)", Value: "report", Checked: true},
		{Label: "Original transcript (.txt)", Value: "transcript", Checked: false},
	}

	selected, err := RunCheckbox("Besides the subtitle, also write:", options, 0)
	if err != nil {
		return nil, err
	}
	if selected == nil {
		return nil, nil
	}

	return parseOutputSelection(selected), nil
}

func parseOutputSelection(values []string) *OutputOptions {
	opts := &OutputOptions{}
	for _, v := range values {
		switch v {
		case "report":
			opts.Report = true
		case "transcript":
			opts.Transcript = true
		}
	}
	return opts
}
