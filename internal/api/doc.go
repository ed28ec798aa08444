// Package api exposes the document Q&A service over HTTP.
//
// Endpoints:
//
//	POST   /chat                     ask a question, get answer + citations
//	POST   /ingest                   trigger background file ingestion
//	POST   /sessions                 create a conversation session
//	GET    /sessions/{id}/history    interactions in a session, oldest first
//	POST   /feedback                 rate an interaction's answer
//	GET    /citations/{id}           chunk detail behind a citation
//	GET    /documents                list ingested documents
//	DELETE /documents/{id}           delete a document and its chunks
//	GET    /health                   liveness probe
//	GET    /ready                    readiness probe (database ping)
//
// All error responses use the envelope {"error": {"code": "...", "message": "..."}}.
package api
