package learner

// SystemPrompt frames every generation. Pass it to llm.WithSystemPrompt.
const SystemPrompt = `You are an ontology engineering assistant. Answer exactly in the requested format and add no explanation.`

// Task prompts. The first %s is the few-shot or retrieved context block,
// the rest are the example fields.
const (
	termTypingPrompt = `Assign ontology types to a term.
%s
Term: %s

Respond with a JSON array of type names only, e.g. ["TypeA", "TypeB"].`

	taxonomyPrompt = `Decide whether one ontology type is a direct or indirect subclass of another.
%s
Is "%s" a subclass of "%s"?

Respond with "yes" or "no" only.`

	nonTaxonomicPrompt = `Name the relation that links two ontology types.
%s
Head: %s
Tail: %s

Respond with a JSON array holding the relation name, e.g. ["partOf"].`

	text2ontoPrompt = `Extract the ontology terms and types mentioned in a document.
%s
Document:
---
%s
---

Respond with a JSON array of term and type names only.`
)

// maxPromptDocumentChars bounds the document text sent for text2onto.
const maxPromptDocumentChars = 4000
