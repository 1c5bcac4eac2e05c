package crawl

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslife/campus-engine/pkg/models"
)

const fixturePage = `<!DOCTYPE html>
<html>
<head>
  <title>Hostel Mess - IIT Palakkad</title>
  <meta name="description" content="Mess timings and menu for campus hostels">
  <script>var tracking = "ignore me";</script>
  <style>.hidden { display: none }</style>
</head>
<body>
  <nav><a href="/ignored-by-text">Navigation chrome</a></nav>
  <main>
    <p>The hostel mess serves breakfast from 7:30 to 9:30 every morning.</p>
    <p>Lunch is available between 12:00 and 14:00 on all working days.</p>
  </main>
  <table>
    <tr><th>Meal</th><th>Time</th></tr>
    <tr><td>Breakfast</td><td>7:30 - 9:30</td></tr>
  </table>
  <table></table>
  <dl>
    <dt>Can guests eat at the mess?</dt>
    <dd>Yes, with a guest coupon from the hostel office.</dd>
    <dt>Is the mess open on holidays?</dt>
    <dd>Only for residents.</dd>
  </dl>
  <p>Contact the mess manager at mess@iitpkd.ac.in or call 9876543210.</p>
  <a href="/hostel/rules">Hostel Rules</a>
  <a href="menu.pdf">Weekly Menu</a>
  <a href="#section">Jump link</a>
  <a href="mailto:mess@iitpkd.ac.in">Mail us</a>
  <footer>Footer boilerplate</footer>
</body>
</html>`

func TestExtractHTML(t *testing.T) {
	page := ExtractHTML([]byte(fixturePage), "https://iitpkd.ac.in/hostel/mess")

	assert.Equal(t, "Hostel Mess - IIT Palakkad", page.Title)
	assert.Equal(t, "Mess timings and menu for campus hostels", page.Description)

	assert.Contains(t, page.Content, "breakfast from 7:30 to 9:30")
	assert.NotContains(t, page.Content, "tracking")
	assert.NotContains(t, page.Content, "Navigation chrome")
	assert.NotContains(t, page.Content, "Footer boilerplate")

	require.Len(t, page.Tables, 1, "empty table must be discarded")
	assert.Equal(t, []string{"Meal", "Time"}, page.Tables[0][0])
	assert.Equal(t, []string{"Breakfast", "7:30 - 9:30"}, page.Tables[0][1])

	require.Len(t, page.FAQs, 2)
	assert.Equal(t, "Can guests eat at the mess?", page.FAQs[0].Question)
	assert.Equal(t, "Yes, with a guest coupon from the hostel office.", page.FAQs[0].Answer)
}

func TestExtractHTML_Links(t *testing.T) {
	page := ExtractHTML([]byte(fixturePage), "https://iitpkd.ac.in/hostel/mess")

	var urls []string
	var pdfs []string
	for _, l := range page.Links {
		if l.Type == LinkPDF {
			pdfs = append(pdfs, l.URL)
		} else {
			urls = append(urls, l.URL)
		}
	}

	assert.Contains(t, urls, "https://iitpkd.ac.in/hostel/rules")
	assert.Contains(t, pdfs, "https://iitpkd.ac.in/hostel/menu.pdf")
	// Fragment is dropped, leaving the page's own URL.
	assert.Contains(t, urls, "https://iitpkd.ac.in/hostel/mess")
	// mailto links are never followed.
	for _, u := range urls {
		assert.NotContains(t, u, "mailto")
	}
}

func TestExtractHTML_Contacts(t *testing.T) {
	page := ExtractHTML([]byte(fixturePage), "https://iitpkd.ac.in/hostel/mess")

	var emails, phones []models.Contact
	for _, c := range page.Contacts {
		switch c.Type {
		case models.ContactEmail:
			emails = append(emails, c)
		case models.ContactPhone:
			phones = append(phones, c)
		}
	}

	require.NotEmpty(t, emails)
	assert.Equal(t, "mess@iitpkd.ac.in", emails[0].Value)
	assert.Contains(t, emails[0].Context, "mess manager")

	require.NotEmpty(t, phones)
	assert.Equal(t, "9876543210", phones[0].Value)
}

func TestExtractContacts_ContextKeepsRuneBoundaries(t *testing.T) {
	// Devanagari text on both sides; the context window lands inside
	// multi-byte runes unless clamped to boundaries.
	text := strings.Repeat("नमस्ते ", 10) + "mess@iitpkd.ac.in" + strings.Repeat(" नमस्ते", 10)

	contacts := ExtractContacts(text)
	require.NotEmpty(t, contacts)
	assert.True(t, utf8.ValidString(contacts[0].Context))
	assert.Contains(t, contacts[0].Context, "mess@iitpkd.ac.in")
}

func TestExtractHTML_TitleIsNormalized(t *testing.T) {
	html := "<html><head><title>Hostel \x00 Life   #$ - IIT Palakkad</title></head><body></body></html>"

	page := ExtractHTML([]byte(html), "https://iitpkd.ac.in")
	assert.Equal(t, "Hostel Life - IIT Palakkad", page.Title)
}

func TestExtractHTML_FallbackContent(t *testing.T) {
	// No main/article/section: paragraph-like elements longer than 20
	// characters contribute, short ones do not.
	html := `<html><body>
	  <p>short</p>
	  <p>This paragraph is long enough to be included in the body.</p>
	  <div>ok</div>
	</body></html>`

	page := ExtractHTML([]byte(html), "https://iitpkd.ac.in")
	assert.Contains(t, page.Content, "long enough to be included")
	assert.NotContains(t, page.Content, "short")
}

func TestExtractHTML_MalformedInput(t *testing.T) {
	page := ExtractHTML([]byte("\x00\x01<<<not html"), "https://iitpkd.ac.in")
	// Extraction failures yield an empty record, never a panic.
	assert.NotNil(t, page)
}

func TestNormalizeText(t *testing.T) {
	in := "Hello\t\tworld!\n\nCall: +91 98765-43210 #$%"
	got := NormalizeText(in)
	assert.Equal(t, "Hello world! Call: 91 98765-43210", got)
}
