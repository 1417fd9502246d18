package mcpsurface

import (
	"context"
)

// elicitBegin starts an elicitation: a tool handler that needs more
// information before it can proceed returns a continuation token instead
// of an error.
func (d *Deps) elicitBegin(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	tool, err := requireString(args, "tool")
	if err != nil {
		return nil, err
	}
	question, err := requireString(args, "question")
	if err != nil {
		return nil, err
	}
	knownContext, _ := args["context"].(map[string]interface{})
	token := d.Elicit.Begin(tool, question, knownContext)
	return map[string]interface{}{"elicitation_token": token, "question": question}, nil
}

// elicitContinue merges the caller's answer into the pending elicitation
// and returns the resulting argument set for re-dispatch.
func (d *Deps) elicitContinue(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	token, err := requireString(args, "elicitation_token")
	if err != nil {
		return nil, err
	}
	answer, _ := args["answer"].(map[string]interface{})
	pending, err := d.Elicit.Continue(token, answer)
	if err != nil {
		return nil, err
	}
	d.Elicit.Complete(token)
	return map[string]interface{}{"tool": pending.Tool, "args": pending.Context}, nil
}
