package script

import (
	"fmt"
	"strings"

	"github.com/voxcast/voxcast/internal/domain/entities"
	"github.com/voxcast/voxcast/pkg/config"
)

const analysisFormatInstructions = `You must always return valid JSON fenced by a markdown code block. Do not return any additional text.
The JSON object must have these fields:
{
  "complexity": <int, 1-5, 1=very simple, 5=highly complex>,
  "density": <int, 1-5, 1=sparse, 5=extremely dense>,
  "concept_count": <int, distinct key concepts presented>,
  "topic_breadth": <int, separate topics or themes covered>,
  "optimal_segments": <int, recommended number of podcast segments, 3-8>,
  "explanation": <string, brief reasoning behind the analysis>
}`

const outlineFormatInstructions = `You must always return valid JSON fenced by a markdown code block. Do not return any additional text.
The JSON object must have these fields:
{
  "title": <string, title of the podcast episode>,
  "description": <string, short listener-facing overview of the episode>,
  "total_duration": <int, total podcast duration in minutes>,
  "segments": [
    {
      "name": <string, name of the segment>,
      "duration": <int, duration in minutes>,
      "talking_points": [<string>, ...],
      "transition": <string, transition text to the next segment; use "Outro, and wrap up the podcast" if there is no next segment>
    }
  ]
}`

const segmentFormatInstructions = `You must always return valid JSON fenced by a markdown code block. Do not return any additional text.
The JSON object must have these fields:
{
  "name": <string, segment name>,
  "duration": <int, duration in minutes>,
  "dialogue": [
    {"speaker": <string, host name>, "text": <string, plain text only, no asterisks or underscores for emphasis>}
  ]
}`

func analysisPrompt(doc *entities.Document) string {
	return fmt.Sprintf(`You are an expert content analyst specializing in podcast production. Your task is to analyze the following
content and provide an assessment to help determine the optimal structure for a podcast episode.

<title>%s</title>
<content>
%s
</content>

Analyze this content and provide your assessment of:
1. Content Complexity: Rate from 1-5 (1=very simple, 5=highly complex)
2. Information Density: Rate from 1-5 (1=sparse, 5=extremely dense)
3. Concept Count: Estimate how many distinct key concepts are presented
4. Content Breadth: How many separate topics or themes does this cover?
5. Recommended Segments: Based on your analysis, how many podcast segments would be ideal (3-8)

%s`, doc.Title, doc.Content, analysisFormatInstructions)
}

func outlinePrompt(doc *entities.Document, analysis string, optimalSegments int) string {
	return fmt.Sprintf(`Create a focused and engaging podcast outline based on the content

CONTENT ANALYSIS:
%s

Use the above content analysis to guide your creation of a well-proportioned podcast outline.

Rules:
1. Target podcast duration and number of segments should be proportional to the content length;
   it should not be more than reading the content directly
2. Each segment must focus on a UNIQUE aspect with NO overlap
3. Keep segments concise and focused on actual content from the source
4. Don't add speculative content or expand beyond the source material
5. Talking points must be mutually exclusive across segments - NO DUPLICATION ALLOWED
6. Maintain natural conversation flow between segments
7. Explore different perspectives, so that important topics are covered holistically
8. Structure content with progressive complexity: start with accessible, foundational concepts,
   build up to more complex discussions, and end with practical applications or broader implications
9. Include engagement hooks for each segment: relatable examples or analogies, thought-provoking
   questions, real-world connections, or scenario-based thought experiments
10. Self-assess the complexity and importance of each topic to determine appropriate depth
11. Allocate more dialogue space to complex concepts and less to simple ones
12. Aim for approximately %d segments based on content analysis
13. Balance segment durations based on topic importance and complexity

<title>%s</title>
<content>
%s
</content>

%s

Make sure each segment has a clear transition to the next topic.
Verify that all talking points are unique across all segments before finalizing.`,
		analysis, optimalSegments, doc.Title, doc.Content, outlineFormatInstructions)
}

func hostProfiles(participants []config.Participant) string {
	profiles := make([]string, 0, len(participants))
	for _, p := range participants {
		profiles = append(profiles, fmt.Sprintf("HOST (%s)[%s]: %s", p.Name, p.Gender, p.Personality))
	}
	return strings.Join(profiles, "\n")
}

func segmentPrompt(seg entities.OutlineSegment, sourceContent, previousContent, profiles string, segmentNumber, totalSegments int) string {
	return fmt.Sprintf(`You are a podcast script writer creating authentic, unscripted dialogue between two knowledgeable experts.

YOUR GOAL: Generate podcast dialogue that's indistinguishable from a real, natural conversation between
experts. Focus on making dialogue that feels spontaneous and human - not AI-generated.

CORE PRINCIPLES:
1. FORBIDDEN PHRASES: never write "exactly", "that's right", "I agree" followed by expansion,
   "absolutely" as confirmation, or any phrase that directly validates the previous statement.
2. ALTERNATIVE RESPONSE PATTERNS: "Oh, that's an interesting perspective...",
   "Hmm, I hadn't thought about it that way...", "That reminds me of...",
   "Building on what you just said...", "I'm not entirely convinced, but I see your point about..."
3. REQUIRED NATURAL ELEMENTS: strong disagreements where hosts challenge each other's ideas,
   genuine interruptions mid-sentence, speech disfluencies (um, uh, like, you know),
   uneven turn lengths, and occasional tangents.

HOST DIFFERENTIATION:
%s
- Hosts MUST have clearly distinct speaking styles
- Maintain these distinct patterns consistently throughout

CONVERSATION DYNAMICS:
1. Never resolve disagreements too quickly or neatly; hosts defend positions with different
   kinds of evidence and sometimes concede one point while raising a new objection.
2. Avoid perfect back-and-forth exchanges; include false starts and abandoned thoughts.
3. Each exchange must advance substantive ideas; balance technical depth with accessible
   explanations and add practical takeaways.
4. Transition organically between topics, reference previous discussions naturally, and
   avoid repeating examples or analogies.
5. Alternate speakers between segments: the host who opens this segment must be different
   from the host who spoke last in the previous segments.

CONTINUOUS CONVERSATION REQUIREMENTS:
- This is ONE CONTINUOUS EPISODE with NO AD BREAKS
- NEVER end a segment with phrases indicating a break (e.g., "we'll be right back", "stay tuned")
- NEVER start a segment with phrases indicating a return (e.g., "welcome back", "as we discussed earlier")
- Transitions between segments should feel like natural topic shifts in a single ongoing conversation

---

SOURCE MATERIAL:
<content>
%s
</content>

PREVIOUS SEGMENTS (GENERATED EPISODE SO FAR):
<content>
%s
</content>

TOTAL SEGMENTS: %d
SEGMENT NUMBER: %d

---

CURRENT SEGMENT DETAILS:
Topic: %s
Key Points: %s
Duration: %d minutes
Transition: %s

SEGMENT-SPECIFIC REQUIREMENTS:
1. If this is segment 1: begin with a casual introduction to the podcast, welcoming listeners
   and introducing the topic conversationally, with some small talk before fully diving in.
2. If this is a middle segment: continue the conversation naturally with a subtle topic shift,
   never mentioning breaks or "welcome back".
3. If this is the final segment: end with a natural conclusion including casual wrap-up cues,
   a brief takeaway, and a casual thank-you to listeners.

%s`,
		profiles, sourceContent, previousContent, totalSegments, segmentNumber,
		seg.Name, strings.Join(seg.TalkingPoints, "; "), seg.DurationMinutes, seg.Transition,
		segmentFormatInstructions)
}
