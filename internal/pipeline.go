package internal

import "fmt"

// PipelinePlayer replays the operation pipeline demo
type PipelinePlayer = Player[PipelineStep, Operation]

// PipelineScript shows a step's input as a processing card, then settles
// the card to success or error with the step's output
var PipelineScript = Script[PipelineStep, Operation]{
	Reveal: func(ref StepRef, step PipelineStep) Operation {
		return Operation{
			ID:     ref.ID,
			Kind:   step.Kind,
			Status: StatusProcessing,
			Input:  step.Input,
			Offset: ref.Offset,
		}
	},
	Settle: settleOperation,
}

func settleOperation(step PipelineStep, op Operation) Operation {
	op.Output = step.Output
	if !step.Classification.IsFailure() {
		op.Status = StatusSuccess
		op.ErrorDetail = ""
		return op
	}

	op.Status = StatusError
	op.ErrorDetail = step.Detail
	if op.ErrorDetail == "" {
		op.ErrorDetail = step.Classification.Describe()
	}
	return op
}

// NewPipelinePlayer creates a player over the registered pipeline scenarios
func NewPipelinePlayer(opts PlayerOptions) (*PipelinePlayer, error) {
	return NewPlayer[PipelineStep, Operation](PipelineScenario, PipelineScript, opts)
}

// PipelineBoard lays revealed operations over the full script so steps not
// yet revealed show as pending cards
func PipelineBoard(steps []PipelineStep, revealed []Operation) []Operation {
	board := make([]Operation, len(steps))
	for i, step := range steps {
		if i < len(revealed) {
			board[i] = revealed[i]
			continue
		}
		board[i] = Operation{
			ID:     fmt.Sprintf("pending-%02d", i+1),
			Kind:   step.Kind,
			Status: StatusPending,
		}
	}
	return board
}

// CountStatus returns how many operations are in status s
func CountStatus(ops []Operation, s OperationStatus) int {
	n := 0
	for _, op := range ops {
		if op.Status == s {
			n++
		}
	}
	return n
}
