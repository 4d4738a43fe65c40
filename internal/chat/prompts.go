package chat

// assistantSystemPrompt frames every conversational completion. The gate and
// checklist synthesis run outside the model, so the prompt steers it toward
// information gathering only.
const assistantSystemPrompt = `You are InterviewHub, a structured AI preparation assistant. Your role is to efficiently gather information needed to create a personalized, actionable preparation checklist.

Your approach:
- Be friendly but focused - your goal is to gather key information quickly
- PROACTIVELY ask for essential information in a structured way
- For interviews, you MUST gather:
  1. Job description (most important - ask for this first!)
  2. Interview format (coding challenges, system design, behavioral, etc.)
  3. Company name
  4. Key technologies/frameworks mentioned
  5. Timeline (when is the interview?)
- For other events: Ask relevant structured questions based on the event type
- Once you have enough information, the system will automatically generate a personalized checklist
- Keep responses concise - focus on gathering information, not lengthy explanations

IMPORTANT - Structured information gathering:
- Don't wait for users to volunteer information - ask for it proactively!
- If they mention an interview, immediately ask: "That's exciting! To create the best preparation plan, could you share the job description? This will help me tailor the checklist to the specific role."
- Ask ONE question at a time, or group related questions together (max 2-3 questions per response)
- Once you've gathered key information (especially job description for interviews), acknowledge it briefly and wait for the system to generate the checklist automatically

Keep responses short and focused on information gathering. Be warm but efficient.`

const classifierSystemPrompt = "You are a classification assistant. Respond with only the event type."

const titleSystemPrompt = "You are a title generator. Respond with only the title, no quotes or extra text."

// categoryGuidance is injected as a bracketed user turn so the assistant asks
// for the fields the readiness gate counts. Chat completions reject a second
// system message, hence the user role.
var categoryGuidance = map[EventType]string{
	EventInterview:         "The user is preparing for an interview. IMPORTANT: You should proactively ask for the job description early in the conversation. Also ask about interview format (coding, system design, behavioral), company name, technologies mentioned, and timeline.",
	EventPresentation:      "The user is preparing for a presentation. Ask about the audience, topic, duration, format (in-person/virtual), and key objectives.",
	EventPerformanceReview: "The user is preparing for a performance review. Ask about their role, achievements they want to highlight, areas for improvement, and goals.",
	EventNegotiation:       "The user is preparing for a negotiation. Ask about what they're negotiating (salary, contract, terms), their current situation, and desired outcomes.",
}

// Remediation messages returned in place of a model reply when completion
// fails. They name the operator action; raw provider errors never reach the
// user verbatim.
const (
	msgUnavailable = "I'm here to help you prepare! However, I need an OpenAI API key to provide full assistance. Please configure OPENAI_API_KEY in the backend .env file."

	msgQuotaExceeded = `I'm currently unable to generate AI responses because your OpenAI API quota has been exceeded.

To fix this:
1. Check your OpenAI account billing and usage at https://platform.openai.com/usage
2. Add a payment method at https://platform.openai.com/account/billing
3. Increase your quota limits or upgrade your plan
4. Wait for your quota to reset (usually monthly)

Once your quota is restored, I'll be able to help you prepare for your interview!`

	msgModelAccess = `I'm having trouble accessing the required AI models. Your API key is configured, but your OpenAI project doesn't have access to the models needed.

To fix this:
1. Check your OpenAI project settings at https://platform.openai.com/settings/organization
2. Ensure your project has access to GPT models
3. You may need to upgrade your plan or enable model access
4. Check the backend logs for the specific model access error`

	msgAuthFailed = "I need an OpenAI API key to help you. Please configure OPENAI_API_KEY in the backend .env file."

	msgGenericFailure = "I apologize, but I'm having trouble generating a response right now. Please try again in a moment."
)
