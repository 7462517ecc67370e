// Package copilot invokes the external assistant CLI that turns natural
// language prompts into code changes. Command construction is isolated behind
// CommandBuilder so the assumed calling convention can be replaced without
// touching orchestration logic.
package copilot
