package services

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// DialogConfirmer shows a native yes/no dialog through the Wails runtime.
type DialogConfirmer struct{}

func (DialogConfirmer) Confirm(ctx context.Context, title, message string) (bool, error) {
	result, err := runtime.MessageDialog(ctx, runtime.MessageDialogOptions{
		Type:          runtime.QuestionDialog,
		Title:         title,
		Message:       message,
		Buttons:       []string{"Yes", "No"},
		DefaultButton: "No",
		CancelButton:  "No",
	})
	if err != nil {
		return false, err
	}
	return result == "Yes", nil
}

// AutoConfirm answers every question with its own value.
type AutoConfirm bool

func (a AutoConfirm) Confirm(context.Context, string, string) (bool, error) {
	return bool(a), nil
}
