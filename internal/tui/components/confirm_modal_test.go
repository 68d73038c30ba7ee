package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/taskdeck/pkg/tuitest"
)

func TestConfirmModal(t *testing.T) {
	tests := []struct {
		name      string
		msg       tea.Msg
		confirmed bool
		cancelled bool
	}{
		{name: "y confirms", msg: tuitest.KeyPress('y'), confirmed: true},
		{name: "enter confirms", msg: tuitest.KeyEnter(), confirmed: true},
		{name: "n cancels", msg: tuitest.KeyPress('n'), cancelled: true},
		{name: "esc cancels", msg: tuitest.KeyEsc(), cancelled: true},
		{name: "other keys ignored", msg: tuitest.KeyPress('z')},
		{name: "non key ignored", msg: tuitest.WindowSize(80, 24)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := NewConfirmModal("Delete task?").Update(tt.msg)
			assert.Equal(t, tt.confirmed, m.Confirmed())
			assert.Equal(t, tt.cancelled, m.Cancelled())
			assert.Equal(t, tt.confirmed || tt.cancelled, m.Done())
		})
	}
}

func TestConfirmModal_View(t *testing.T) {
	out := tuitest.StripANSI(NewConfirmModal("Delete task \"a\"?").View())
	assert.Contains(t, out, "Delete task \"a\"?")
	assert.Contains(t, out, "Continue? (y/n)")
}
