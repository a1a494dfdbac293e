package response

import "encoding/json"

// wireResponse is the top-level object the model is asked to emit.
// Fields are decoded in stages so errors can name the offending index.
type wireResponse struct {
	Concepts    json.RawMessage `json:"concepts"`
	MentalModel json.RawMessage `json:"mental_model"`
}

type wireConcept struct {
	ID             *string       `json:"id"`
	Title          *string       `json:"title"`
	ParentID       *string       `json:"parent_id"`
	Order          *int          `json:"order"`
	OneLineSummary *string       `json:"one_line_summary"`
	WhatThisIs     *string       `json:"what_this_is"`
	WhyItMatters   *string       `json:"why_it_matters"`
	KeyPoints      []string      `json:"key_points"`
	Excerpts       []wireExcerpt `json:"excerpts"`
}

type wireExcerpt struct {
	Text     *string `json:"text"`
	Location *string `json:"location"`
	Context  *string `json:"context"`
}

type wireMentalModel struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// examplePayload is the canonical example embedded in system prompts.
type examplePayload struct {
	Concepts    []exampleConcept `json:"concepts"`
	MentalModel *exampleModel    `json:"mental_model"`
}

type exampleConcept struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	ParentID       *string          `json:"parent_id"`
	Order          int              `json:"order"`
	OneLineSummary string           `json:"one_line_summary"`
	WhatThisIs     string           `json:"what_this_is"`
	WhyItMatters   string           `json:"why_it_matters"`
	KeyPoints      []string         `json:"key_points"`
	Excerpts       []exampleExcerpt `json:"excerpts"`
}

type exampleExcerpt struct {
	Text     string  `json:"text"`
	Location string  `json:"location"`
	Context  *string `json:"context"`
}

type exampleModel struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ExamplePayload returns an indented example object that satisfies the
// decoder. It is generated from the same field names Parse expects.
func ExamplePayload() string {
	parent := "concept-001"
	excerptContext := "Opening section"
	payload := examplePayload{
		Concepts: []exampleConcept{
			{
				ID:             "concept-001",
				Title:          "Core Idea",
				Order:          0,
				OneLineSummary: "The main point in one sentence",
				WhatThisIs:     "Two or three sentences explaining the idea",
				WhyItMatters:   "Why a reader should care about it",
				KeyPoints:      []string{"Takeaway 1", "Takeaway 2", "Takeaway 3"},
				Excerpts: []exampleExcerpt{
					{Text: "A verbatim quote from the document", Location: "Paragraph 2", Context: &excerptContext},
				},
			},
			{
				ID:             "concept-002",
				Title:          "Supporting Detail",
				ParentID:       &parent,
				Order:          0,
				OneLineSummary: "A narrower idea that supports the core idea",
				WhatThisIs:     "Short explanation",
				WhyItMatters:   "How it strengthens the parent concept",
				KeyPoints:      []string{"Detail 1", "Detail 2"},
				Excerpts:       []exampleExcerpt{},
			},
		},
		MentalModel: &exampleModel{
			Name:        "Name of the framing",
			Description: "How the concepts fit together",
		},
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		// Static data; marshalling cannot fail.
		panic(err)
	}
	return string(data)
}
