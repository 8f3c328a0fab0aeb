package export

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"violation-log-service/models"
)

// reportTemplate is the printable single-violation report. It is a
// self-contained RTL page; printing it to PDF is the export path.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html dir="rtl" lang="ar">
<head>
<meta charset="utf-8">
<title>تقرير مخالفة - {{.Violation.ID}}</title>
<style>
  body { font-family: 'Tajawal', sans-serif; padding: 30px; color: #1e293b; line-height: 1.5; }
  .header { text-align: center; border-bottom: 5px solid #2563eb; padding-bottom: 15px; margin-bottom: 25px; }
  .title { font-size: 24px; font-weight: bold; }
  .subtitle { font-size: 14px; color: #64748b; font-weight: bold; }
  .meta-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 15px; margin-bottom: 25px; }
  .meta-item { background: #f8fafc; padding: 12px; border-radius: 10px; border: 1px solid #e2e8f0; }
  .label { font-size: 11px; color: #64748b; font-weight: 700; display: block; margin-bottom: 3px; }
  .value { font-size: 14px; font-weight: 700; }
  .section-title { font-size: 18px; font-weight: bold; margin-bottom: 12px; border-right: 5px solid #2563eb; padding-right: 12px; }
  .description-box { background: #fefce8; padding: 20px; border: 1px solid #fef08a; border-radius: 12px; margin-bottom: 25px; }
  .image-wrapper { text-align: center; background: #f1f5f9; padding: 10px; border-radius: 15px; }
  .image-wrapper img { max-width: 100%; max-height: 450px; object-fit: contain; }
  .footer { margin-top: 40px; padding-top: 15px; border-top: 2px solid #f1f5f9; text-align: center; font-size: 11px; color: #94a3b8; }
  @media print { body { padding: 0; } .image-wrapper { break-inside: avoid; } }
</style>
</head>
<body>
<div class="header">
  <div class="title">تقرير رصد مخالفة سلامة</div>
  <div class="subtitle">قسم السلامة - شركة مسبك الرياض</div>
</div>
<div class="meta-grid">
  <div class="meta-item"><span class="label">الرقم المرجعي</span><span class="value">#{{.Violation.ID}}</span></div>
  <div class="meta-item"><span class="label">تاريخ الرصد</span><span class="value">{{.Violation.Date}}</span></div>
  <div class="meta-item"><span class="label">الموقع المحدد</span><span class="value">{{.Violation.Location}}</span></div>
  <div class="meta-item"><span class="label">القسم المسؤول</span><span class="value">{{.Violation.Department}}</span></div>
  <div class="meta-item"><span class="label">مستوى الخطورة</span><span class="value">{{.Violation.Severity}}</span></div>
  <div class="meta-item"><span class="label">نوع الخطورة</span><span class="value">{{.Violation.Category}}</span></div>
  <div class="meta-item"><span class="label">الموظف المسؤول</span><span class="value">{{.Violation.Reporter}}</span></div>
</div>
<div class="section-title">وصف المخالفة الميداني</div>
<div class="description-box">{{.Violation.Description}}</div>
<div class="section-title">الدليل المرئي المرفق</div>
<div class="image-wrapper"><img src="{{.Violation.ImageURL}}" alt="Violation Evidence"></div>
<div class="footer">هذا التقرير مستخرج آلياً من نظام إدارة السلامة - شركة مسبك الرياض &copy; {{.Year}}</div>
</body>
</html>`))

// WriteReportDocument renders the printable report for one violation on w.
func WriteReportDocument(v models.Violation, w io.Writer) error {
	data := struct {
		Violation models.Violation
		Year      int
	}{Violation: v, Year: time.Now().Year()}

	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report document: %w", err)
	}
	return nil
}
