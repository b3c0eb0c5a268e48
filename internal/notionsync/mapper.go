// Package notionsync mirrors ledger transactions into a Notion database for
// ad-hoc reporting. The sync is one way and idempotent: the "Transaction ID"
// rich text property on each Notion page identifies the source row.
package notionsync

import (
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/jomei/notionapi"
)

// TransactionToNotionProperties maps a ledger transaction onto the Notion
// database schema.
func TransactionToNotionProperties(tx *domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Description,
					},
				},
			},
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.Date(
						tx.Date.Year(), tx.Date.Month(), tx.Date.Day(),
						0, 0, 0, 0, time.UTC,
					))
					return &d
				}(),
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: func() float64 {
				f, _ := tx.Amount.Float64()
				return f
			}(),
		},
		"Type": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(tx.Type),
			},
		},
		"Recurring": notionapi.CheckboxProperty{
			Checkbox: tx.IsRecurring,
		},
		"Transaction ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID.String(),
					},
				},
			},
		},
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		}
	}

	if tx.RecurringInterval != nil {
		props["Interval"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(*tx.RecurringInterval),
			},
		}
	}

	props["Imported At"] = notionapi.DateProperty{
		Date: &notionapi.DateObject{
			Start: func() *notionapi.Date {
				d := notionapi.Date(tx.CreatedAt)
				return &d
			}(),
		},
	}

	return props
}
