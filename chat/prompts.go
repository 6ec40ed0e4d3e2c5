// Copyright 2026 Docent Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chat

import (
	"fmt"
	"strings"

	"github.com/docentlabs/docent/core"
)

// groundingDirective constrains the model to the retrieved passages. It
// demands an explicit refusal when the passages do not contain the answer
// and mirrors the language the question was asked in.
const groundingDirective = `You are an assistant that answers questions about a private document collection.

Rules:
- Answer ONLY from the context passages below. Do not use outside knowledge.
- If the context does not contain the answer, say clearly that you could not find it in the documents. Never invent an answer.
- Answer in the same language the question was asked in.
- Be concise and factual.`

// condenseDirective asks the model to fold conversation history into a
// single standalone question, suitable for retrieval.
const condenseDirective = `Given the conversation so far and a follow-up message, rewrite the follow-up as a single standalone question that preserves all context needed to understand it. Reply with the rewritten question only, nothing else.`

// renderContext formats retrieved passages as numbered blocks with their
// source metadata, for inclusion in the system prompt.
func renderContext(passages core.RetrievalResult) string {
	var sb strings.Builder
	sb.WriteString("Context passages:\n")
	for i, p := range passages {
		fmt.Fprintf(&sb, "\n[%d] %s, page %s:\n%s\n", i+1, p.Chunk.FileName(), p.Chunk.PageLabel(), p.Chunk.Text)
	}
	return sb.String()
}

// renderHistory formats prior turns as a transcript for the condenser.
func renderHistory(history []core.Turn) string {
	var sb strings.Builder
	for _, turn := range history {
		label := "Human"
		if turn.Speaker == core.SpeakerAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, turn.Text)
	}
	return sb.String()
}
