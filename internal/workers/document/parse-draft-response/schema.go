package parsedraftresponse

import "docgen-workers/internal/common/validation"

// responseSchema is the part of a chat completions response the parser reads.
var responseSchema = validation.MustCompileSchema(`{
  "type": "object",
  "required": ["choices", "usage"],
  "properties": {
    "choices": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["message"],
        "properties": {
          "message": {
            "type": "object",
            "properties": {
              "content": {"type": ["string", "null"]}
            }
          }
        }
      }
    },
    "usage": {
      "type": "object",
      "required": ["total_tokens"],
      "properties": {
        "total_tokens": {"type": "integer", "minimum": 0}
      }
    }
  }
}`)
