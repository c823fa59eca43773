package mcpserver

import (
	"fmt"

	"github.com/starford/notestore/internal/models"
)

// NoteRulesURI identifies the note rules resource.
const NoteRulesURI = "notestore://note-rules"

// NoteRules describes what the store accepts, for LLM consumers.
var NoteRules = fmt.Sprintf(`# Note rules

A note is a name plus plain text. Each note is stored as one file, "<name>.txt".

## Names

- Required, at most %d bytes.
- Letters (any script), digits, spaces, "_", "-" and ".".
- Must not start or end with "." or a space; no "/" or "\".
- Names are case-sensitive where the filesystem is.

## Text

- Required and non-empty for create and update.
- Stored byte for byte; no newline or encoding normalisation.

## Operations

- create_note fails if the name is taken. Use update_note to change a note.
- update_note fails if the note does not exist; it never creates one.
- update_note replaces the whole text; there is no append or merge.
- delete_note is permanent and fails if the note does not exist.
- list_notes returns every note with its full text, in no particular order.
`, models.MaxNameBytes)
