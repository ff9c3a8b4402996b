package agentflow

// SystemPrompt is the instruction placed before the conversation history.
const SystemPrompt = "You are a helpful AI assistant for managing todo tasks. " +
	"You have access to tools to create, view, mark complete, and delete tasks. " +
	"Always respond in a helpful and concise manner. " +
	"If asked to mark a task complete or delete a task, first confirm the task exists by listing tasks if you are unsure of the ID."

// fallbackReply is used when the final round asks for more tools and says
// nothing else; those requests are not executed.
const fallbackReply = "I've finished the actions I could take for this message. Let me know if you'd like me to do anything else."
