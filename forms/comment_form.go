package forms

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkstream/inkstream/models"
	"github.com/inkstream/inkstream/utils"
)

// CommentForm carries the submitted comment text.
type CommentForm struct {
	Text   string
	Errors FieldErrors
}

// NewCommentForm returns an empty form for inline rendering on the post page.
func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: FieldErrors{}}
}

// ParseCommentForm reads the submitted text from the request.
func ParseCommentForm(ctx *gin.Context) *CommentForm {
	f := NewCommentForm()
	f.Text = ctx.PostForm("text")
	return f
}

// Valid reports whether the comment can be applied.
func (f *CommentForm) Valid() bool {
	if strings.TrimSpace(f.Text) == "" {
		f.Errors["text"] = requiredMessage
	}
	return len(f.Errors) == 0
}

// Apply writes the validated text onto the comment. AuthorID and PostID are
// for the caller to set.
func (f *CommentForm) Apply(comment *models.Comment) {
	comment.Text = utils.Sanitize(strings.TrimSpace(f.Text))
}

// Context returns the render payload for the inline comment form.
func (f *CommentForm) Context() gin.H {
	return gin.H{
		"values": gin.H{"text": f.Text},
		"errors": f.Errors,
	}
}
