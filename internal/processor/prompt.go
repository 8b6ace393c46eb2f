package processor

import "fmt"

const notePrompt = `You are an experienced executive assistant who turns voice-note transcripts into readable notes.

Read the transcript below and answer with a single JSON object using exactly these keys:
- "title": a 4 to 7 word title describing the note
- "key_points": an array of strings summarising the key ideas
- "action_items": an array of strings with follow-up actions, empty if there are none
- "formatted_transcript": the original transcript with paragraph breaks and punctuation cleaned up for reading

Transcript:
---
%s
---`

func buildPrompt(transcript string) string {
	return fmt.Sprintf(notePrompt, transcript)
}
