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


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Page must be 1-based when set
//
// NOT validated:
//   - File (empty renders as "Unknown")
//   - Id (derived by the chunker; 0 only for unsaved chunks)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.Page < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidPage)
	}

	return nil
}

// ValidateTurn validates a conversation Turn according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Speaker must be valid (Human or Assistant)
//
// NOT validated:
//   - Citations (only assistant turns carry them, and they may be empty)
func ValidateTurn(turn *Turn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidTurn)
	}

	if turn.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptyText)
	}

	if err := ValidateSpeaker(turn.Speaker); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}

	return nil
}

// ValidateSpeaker validates that a Speaker has a valid value.
func ValidateSpeaker(speaker Speaker) error {
	if speaker != SpeakerHuman && speaker != SpeakerAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidSpeaker, speaker)
	}
	return nil
}
