// Package odm is a small object-document mapper.
//
// A Schema is an ordered list of Path descriptors, built either by hand with
// NewSchema or from a tagged Go struct with SchemaFor. A Registry compiles
// schemas into named Model values, each backed by a Collection:
//
//	type User struct {
//		Email string `json:"email" odm:"required,unique,lowercase,trim"`
//		Age   int    `json:"age,omitempty" odm:"min=0"`
//	}
//
//	users := odm.Default.MustModel("User", odm.MustSchemaFor(User{}))
//	doc, err := users.Create(ctx, User{Email: " Ada@Example.com "})
//
// Documents are validated against the JSON Schema derived from the model
// schema. Collections support sorting in the "-field other" form and
// filtering with CEL expressions over the document bound as doc.
package odm
