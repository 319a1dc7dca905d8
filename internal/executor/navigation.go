package executor

import "github.com/aretw0/colloquy/pkg/domain"

// seek moves pos forward to the first action at or after it, skipping empty
// topics and phases. It reports false when the script is exhausted.
func seek(script *domain.Script, pos *domain.Position) bool {
	for pos.PhaseIndex < len(script.Phases) {
		phase := script.Phases[pos.PhaseIndex]
		for pos.TopicIndex < len(phase.Topics) {
			if pos.ActionIndex < len(phase.Topics[pos.TopicIndex].Actions) {
				return true
			}
			pos.TopicIndex++
			pos.ActionIndex = 0
		}
		pos.PhaseIndex++
		pos.TopicIndex = 0
		pos.ActionIndex = 0
	}
	return false
}
