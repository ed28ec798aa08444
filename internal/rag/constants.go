package rag

// NoInformationResponse is returned when retrieval finds nothing. The
// completion model is never consulted in that case.
const NoInformationResponse = "I couldn't find relevant information in the ingested documentation to answer your question. Please try rephrasing your question or ask about a different topic."

// fallbackPrefix opens the degraded answer produced when the completion
// model is unavailable or fails. The body is the highest-ranked chunk.
const fallbackPrefix = "The language model is currently unavailable. Based on the documentation: "

// promptTemplate frames the retrieved context for the completion model.
// Filled by fmt.Sprintf with the context blocks and the user question.
const promptTemplate = `You are a technical documentation assistant. Answer the user's question concisely based on the provided documentation context.

CONTEXT FROM DOCUMENTATION:
%s

USER QUESTION: %s

INSTRUCTIONS:
- Give a direct, concise answer (2-4 sentences max)
- Focus on the most important information only
- Include essential function names or concepts
- Skip lengthy explanations unless specifically asked
- Be precise and technical but brief

ANSWER:`
