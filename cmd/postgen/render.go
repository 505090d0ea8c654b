package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"instagen/internal/form"
	"instagen/internal/model"
	"instagen/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	oddRowStyle = cellStyle.Foreground(lipgloss.Color("252"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// captionWidth 配文列折行宽度
const captionWidth = 48

// renderRecords 以表格形式输出，列与导出文件保持一致
func renderRecords(records []model.PostRecord) string {
	if len(records) == 0 {
		return "No posts generated"
	}

	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		index := rec.Index
		if index <= 0 {
			index = i + 1
		}
		rows = append(rows, []string{
			strconv.Itoa(index),
			rec.PostType.String(),
			rec.HeadlineText(),
			wrapWords(rec.HashtagText(), captionWidth/2),
			wrapWords(rec.Caption, captionWidth),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(service.ExportHeaders...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 1:
				return oddRowStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

// wrapWords 按单词折行
func wrapWords(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	lineLen := 0
	for i, w := range words {
		if i > 0 {
			if lineLen+1+len(w) > width {
				b.WriteByte('\n')
				lineLen = 0
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}
		b.WriteString(w)
		lineLen += len(w)
	}
	return b.String()
}

// ==================== 提示输出 ====================

type termNotifier struct {
	w io.Writer
}

func newTermNotifier(w io.Writer) form.Notifier {
	return termNotifier{w: w}
}

func (n termNotifier) Notify(notice form.Notice) {
	style := infoStyle
	if notice.Level == form.NoticeError {
		style = errorStyle
	}
	fmt.Fprintln(n.w, style.Render(notice.Message))
}
