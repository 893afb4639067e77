package forms

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkstream/inkstream/models"
	"github.com/inkstream/inkstream/utils"
)

// PostForm carries the submitted (text, group, image) triple for creating or
// editing a post.
type PostForm struct {
	Text     string
	GroupRaw string
	Image    *multipart.FileHeader
	Errors   FieldErrors

	group *models.Group
}

// NewPostForm returns an empty form for rendering the create page.
func NewPostForm() *PostForm {
	return &PostForm{Errors: FieldErrors{}}
}

// PostFormFromModel returns a form pre-filled from an existing post, for
// rendering the edit page.
func PostFormFromModel(post *models.Post) *PostForm {
	f := NewPostForm()
	f.Text = post.Text
	if post.GroupID != nil {
		f.GroupRaw = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return f
}

// ParsePostForm reads submitted form values from the request and resolves the
// optional group selection against the database.
func ParsePostForm(ctx *gin.Context, db *gorm.DB) *PostForm {
	f := NewPostForm()
	f.Text = ctx.PostForm("text")
	f.GroupRaw = strings.TrimSpace(ctx.PostForm("group"))
	if file, err := ctx.FormFile("image"); err == nil {
		f.Image = file
	}

	if f.GroupRaw != "" {
		id, err := strconv.ParseUint(f.GroupRaw, 10, 32)
		if err != nil {
			f.Errors["group"] = "select a valid group"
			return f
		}
		var group models.Group
		if err := db.First(&group, id).Error; err != nil {
			f.Errors["group"] = "select a valid group"
			return f
		}
		f.group = &group
	}
	return f
}

// Valid runs validation and reports whether the form can be applied.
// Text must be non-empty after trimming; the model-level not-null constraint
// enforces the same rule, but it is surfaced here as a field error.
func (f *PostForm) Valid() bool {
	if strings.TrimSpace(f.Text) == "" {
		f.Errors["text"] = requiredMessage
	}
	return len(f.Errors) == 0
}

// Apply writes the validated values onto the post, saving the uploaded image
// if one was submitted. Author and creation timestamp are left untouched.
func (f *PostForm) Apply(ctx *gin.Context, post *models.Post, uploadDir string) error {
	post.Text = utils.Sanitize(strings.TrimSpace(f.Text))
	if f.group != nil {
		id := f.group.ID
		post.GroupID = &id
		post.Group = f.group
	} else {
		post.GroupID = nil
		post.Group = nil
	}
	if f.Image != nil {
		path, err := saveImage(ctx, f.Image, uploadDir)
		if err != nil {
			return err
		}
		post.Image = path
	}
	return nil
}

// saveImage stores the uploaded file under uploadDir with a collision-free name
// and returns the stored path.
func saveImage(ctx *gin.Context, file *multipart.FileHeader, uploadDir string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(filepath.Base(file.Filename))
	name := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	dst := filepath.Join(uploadDir, name)
	if err := ctx.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Context returns the render payload for re-displaying the form with errors.
func (f *PostForm) Context() gin.H {
	return gin.H{
		"values": gin.H{"text": f.Text, "group": f.GroupRaw},
		"errors": f.Errors,
	}
}
