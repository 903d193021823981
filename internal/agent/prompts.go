package agent

import (
	"fmt"
	"strings"

	"github.com/Soham2704/Pdf-chat/internal/models"
)

const classifyInstruction = "Classify user intent as 'summarize', 'reason' (for comparison/timeline), or 'rag' (for lookup). Reply summarize, reason, or rag only."

func classifyPrompt(question string) string {
	return fmt.Sprintf("%s\nUser Input: %s", classifyInstruction, question)
}

func lookupPrompt(question string, evidence []*models.Evidence) string {
	parts := make([]string, len(evidence))
	for i, e := range evidence {
		parts[i] = fmt.Sprintf("[Source: %s | ID: %s] %s", e.Chunk.SourceDocument, e.Chunk.ID, e.Chunk.Text)
	}
	return fmt.Sprintf(`You are a helpful assistant. Answer the user's question based ONLY on the context below.
If you answer, you MUST cite the source document and chunk ID.

Context:
%s

Question:
%s`, strings.Join(parts, "\n\n"), question)
}

func fileSelectionPrompt(question string, files []string) string {
	return fmt.Sprintf(`You are a file selector.
User Request: %q
Available Files: %s

Task: Identify which files the user wants to summarize.
- If they ask for "all", "everything", "the documents", or don't specify, return the word: ALL
- If they specify a file, return ONLY that filename exactly as it appears in the list.
- If multiple, return them comma-separated.

Return ONLY the filenames or 'ALL'. No other text.`, question, strings.Join(files, ", "))
}

func summaryPrompt(evidence []*models.Evidence) string {
	parts := make([]string, len(evidence))
	for i, e := range evidence {
		parts[i] = fmt.Sprintf("== SOURCE DOC: %s ==\n%s", e.Chunk.SourceDocument, e.Chunk.Text)
	}
	return fmt.Sprintf(`You are an expert summarizer.
Create a comprehensive summary based on the provided context.

Instructions:
1. Only summarize the documents provided in the context below.
2. If the user asked for a specific document, focus ONLY on that.
3. Explicitly mention the document names in your summary.
4. Structure with clear headings and bullet points.

Context from documents:
%s`, strings.Join(parts, "\n\n"))
}

func reasonPrompt(question string, evidence []*models.Evidence) string {
	parts := make([]string, len(evidence))
	for i, e := range evidence {
		parts[i] = fmt.Sprintf("[%s] %s", e.Chunk.SourceDocument, e.Chunk.Text)
	}
	return fmt.Sprintf(`You are a specialized reasoning agent.
The user has asked for a complex analysis (comparison, timeline, aggregation, or logic).

Reference the context retrieved for this question.
If comparing, list similarities and differences.
If creating a timeline, order events chronologically.
If the context is empty, say that the documents contain no information to reason over.

Context:
%s

User Request:
%s`, strings.Join(parts, "\n\n"), question)
}
