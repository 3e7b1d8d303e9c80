package entities

import "fmt"

// ContentAnalysis is the stage-1 assessment used to size the outline.
// It is never persisted; a parse failure degrades to defaults.
type ContentAnalysis struct {
	Complexity      int    `json:"complexity"`
	Density         int    `json:"density"`
	ConceptCount    int    `json:"concept_count"`
	TopicBreadth    int    `json:"topic_breadth"`
	OptimalSegments int    `json:"optimal_segments"`
	Explanation     string `json:"explanation"`
}

// Validate checks the analysis fields are inside their documented ranges.
func (a *ContentAnalysis) Validate() error {
	if a.Complexity < 1 || a.Complexity > 5 {
		return fmt.Errorf("complexity out of range: %d", a.Complexity)
	}
	if a.Density < 1 || a.Density > 5 {
		return fmt.Errorf("density out of range: %d", a.Density)
	}
	if a.OptimalSegments < 3 || a.OptimalSegments > 8 {
		return fmt.Errorf("optimal_segments out of range: %d", a.OptimalSegments)
	}
	return nil
}

// OutlineSegment is one planned topical unit of the episode.
type OutlineSegment struct {
	Name            string   `json:"name"`
	DurationMinutes int      `json:"duration"`
	TalkingPoints   []string `json:"talking_points"`
	Transition      string   `json:"transition"`
}

// PodcastOutline is the planned structure of an episode. Segment order is
// narrative order and is meaningful.
type PodcastOutline struct {
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	TotalDurationMinutes int              `json:"total_duration"`
	Segments             []OutlineSegment `json:"segments"`
}

// Validate checks the outline is structurally usable for script generation.
func (o *PodcastOutline) Validate() error {
	if o.Title == "" {
		return fmt.Errorf("outline missing title")
	}
	if len(o.Segments) == 0 {
		return fmt.Errorf("outline has no segments")
	}
	for i, seg := range o.Segments {
		if seg.Name == "" {
			return fmt.Errorf("segment %d missing name", i+1)
		}
		if len(seg.TalkingPoints) == 0 {
			return fmt.Errorf("segment %d has no talking points", i+1)
		}
	}
	return nil
}

// DialogueLine is one speaker turn of text.
type DialogueLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ScriptSegment is the written dialogue for one outline segment.
type ScriptSegment struct {
	Name            string         `json:"name"`
	DurationMinutes int            `json:"duration"`
	Dialogue        []DialogueLine `json:"dialogue"`
}

// Validate checks the segment carries usable dialogue.
func (s *ScriptSegment) Validate() error {
	if len(s.Dialogue) == 0 {
		return fmt.Errorf("segment %q has no dialogue", s.Name)
	}
	for i, line := range s.Dialogue {
		if line.Speaker == "" || line.Text == "" {
			return fmt.Errorf("segment %q line %d is incomplete", s.Name, i+1)
		}
	}
	return nil
}

// EpisodeScript is the workflow output: all segment dialogue flattened in
// segment order.
type EpisodeScript struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Dialogues   []DialogueLine `json:"dialogues"`
}
