package domain

// Object type names used for permission checks, activity records and
// attribute ownership.
const (
	ObjectTypePage       = "page"
	ObjectTypeFolder     = "folder"
	ObjectTypeContent    = "content_body"
	ObjectTypeDefinition = "object_tag_definition"
)
