package extract

import "time"

// Month names as protocols write them, including shortened and
// misspelled OCR variants.
var hebrewMonths = map[string]time.Month{
	"ינואר": time.January, "פברואר": time.February, "מרץ": time.March,
	"מרס": time.March, "מארס": time.March, "אפריל": time.April,
	"מאי": time.May, "יוני": time.June, "יולי": time.July,
	"אוגוסט": time.August, "ספטמבר": time.September, "אוקטובר": time.October,
	"נובמבר": time.November, "דצמבר": time.December,
	"ינו": time.January, "פבר": time.February, "מרצ": time.March,
	"אפר": time.April, "יונ": time.June, "יול": time.July,
	"אוג": time.August, "ספט": time.September, "אוק": time.October,
	"נוב": time.November, "דצמ": time.December,
}

// KnownCategories are the discussion categories the council files items
// under. Order is presentation order in the review UI.
var KnownCategories = []string{
	"תקציב וכספים",
	"תשתיות ופיתוח",
	"חינוך",
	"תרבות ופנאי",
	"רווחה ושירותים חברתיים",
	"בריאות",
	"בטיחות וביטחון",
	"תכנון ובניה",
	"איכות הסביבה",
	"ספורט ונוער",
	"שונות",
	"דיווח ועדכון",
	"מינויים וכח אדם",
	"משפטי",
}

var KnownDiscussionTypes = []string{
	"אישור תקציב/תב\"ר",
	"מינוי/בחירה",
	"דיווח",
	"עדכון מדיניות",
	"אישור הסכם",
	"אישור פרוטוקול",
	"הצגת תכנית",
	"דיון ציבורי",
	"שונות",
}

var KnownDecisionStatuses = []string{
	"אושר פה אחד",
	"אושר",
	"לא אושר",
	"ירד מסדר היום",
	"לא התקבלה החלטה",
	"דיווח ועדכון",
	"הופנה לוועדה",
	"נדחה לדיון נוסף",
}

var KnownStaffRoles = []string{
	"מנכ\"ל",
	"גזבר",
	"יועמ\"ש",
	"מבקר העירייה",
	"מהנדס העיר",
	"מנהל אגף",
	"דובר",
	"מזכיר העירייה",
	"עוזר ראש העיר",
	"יועץ משפטי",
}

// staffKeywords gate attendance lines to the ones naming staff, masculine
// and feminine forms both.
var staffKeywords = []string{
	"מנכ\"ל", "מנכל", "מנכ\"לית", "מנכלית",
	"גזבר", "גזברית",
	"יועמ\"ש", "יועץ משפטי", "יועצת משפטית",
	"מבקר", "מבקרת",
	"מהנדס", "מהנדסת",
	"דובר", "דוברת",
	"מזכיר", "מזכירה",
	"עוזר", "עוזרת",
	"מנהל", "מנהלת",
	"רכז", "רכזת",
	"תקציבן", "תקציבנית",
	"העירייה",
}

// ElectedRoles separate council members from staff in attendance records.
var ElectedRoles = []string{
	"חבר מועצה",
	"חברת מועצה",
	"ראש העיר",
	"סגן ראש העיר",
	"חבר מועצה לשעבר",
}

var KnownCommittees = []string{
	"מליאת המועצה",
	"מועצת העיר",
	"ועדת הנהלה",
	"ועדת כספים",
	"ועדת תכנון ובניה",
	"ועדת חינוך",
	"ועדת רווחה",
	"ועדת איכות הסביבה",
}
