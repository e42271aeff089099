package providers

import (
	"strings"

	"protoflow/internal/extract"
	"protoflow/internal/util"
)

// promptClipRunes bounds the protocol text included in any prompt.
const promptClipRunes = 1500

// promptFor renders the Hebrew instruction for one field kind. Each template
// pins the exact answer shape the extractor on the other side parses; the
// note about reversed text matters because OCR output is often RTL read as
// LTR.
func promptFor(kind, text string) string {
	text = util.ClipRunes(text, promptClipRunes)
	switch kind {
	case extract.KindVote:
		return "אנא חלץ את תוצאות ההצבעה מהטקסט הבא.\n" +
			"שים לב: הטקסט עשוי להיות הפוך (למשל \"דחא הפ\" הוא \"פה אחד\").\n" +
			"החזר JSON בלבד בפורמט: {\"type\": \"unanimous\"|\"counted\", \"yes\": number, \"no\": number, \"abstain\": number}\n\n" +
			"טקסט:\n" + text + "\n\nJSON:"
	case extract.KindDecision:
		return "אנא סווג את ההחלטה בטקסט הבא.\n" +
			"השב רק באחד מהסטטוסים הבאים, ללא מילים נוספות: " +
			strings.Join(extract.KnownDecisionStatuses, ", ") + "\n\n" +
			"טקסט:\n" + text + "\n\nתשובה:"
	case extract.KindMeetingDate:
		return "אנא חלץ את תאריך הישיבה מהטקסט הבא.\n" +
			"שים לב: הטקסט עשוי להיות הפוך (RTL שנקרא כ-LTR).\n" +
			"השב בפורמט DD/MM/YYYY בלבד.\n\n" +
			"טקסט:\n" + text + "\n\nתשובה:"
	case extract.KindMeetingNumber:
		return "אנא חלץ את מספר הישיבה מהטקסט הבא.\n" +
			"השב בספרות בלבד.\n\n" +
			"טקסט:\n" + text + "\n\nתשובה:"
	case extract.KindBudget:
		return "אנא חלץ את הסכום הכולל המאושר מהטקסט הבא.\n" +
			"השב במספר בלבד, בשקלים.\n\n" +
			"טקסט:\n" + text + "\n\nתשובה:"
	case extract.KindPersonName:
		return "השם הבא נקרא מ-OCR ועשוי להיות הפוך או משובש.\n" +
			"השב רק עם השם המתוקן.\n\n" +
			"שם:\n" + text + "\n\nתשובה:"
	default:
		return text + "\n\nתשובה:"
	}
}
