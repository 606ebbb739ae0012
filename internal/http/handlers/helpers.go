package handlers

import (
	"strconv"

	"learnora.com/app/internal/modules/courses"
	"learnora.com/app/internal/modules/payments"
	"learnora.com/app/internal/modules/users"
	"learnora.com/app/pkg/view"
)

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func paymentView(p payments.Payment) view.Payment {
	return view.Payment{
		ID:               p.ID,
		OrderID:          p.OrderID,
		UserID:           p.UserID,
		CourseID:         p.CourseID,
		Amount:           view.MoneyFromMinor(p.AmountMinor, p.Currency),
		PaymentMethod:    p.PaymentMethod,
		Receipt:          p.Receipt,
		Status:           p.Status,
		GatewayPaymentID: view.Deref(p.GatewayPaymentID),
		PaidVia:          view.Deref(p.PaidVia),
		ErrorMessage:     view.Deref(p.ErrorMessage),
		CreatedAt:        view.Timestamp(p.CreatedAt),
		PaidAt:           view.OptTimestamp(p.PaidAt),
		RefundedAt:       view.OptTimestamp(p.RefundedAt),
	}
}

func courseSummary(c courses.Course) view.CourseSummary {
	return view.CourseSummary{
		ID:            c.ID,
		Slug:          c.Slug,
		Title:         c.Title,
		Category:      c.Category,
		Language:      c.Language,
		Duration:      c.Duration,
		ActualPrice:   view.MoneyFromMinor(c.ActualPriceMinor, c.Currency),
		DiscountPrice: view.MoneyFromMinor(c.DiscountPriceMinor, c.Currency),
		ThumbnailURL:  c.IntroThumbnailURL,
	}
}

func courseView(c courses.Course) view.Course {
	out := view.Course{
		CourseSummary: courseSummary(c),
		Description:   c.Description,
		IntroVideoURL: c.IntroVideoURL,
		Chapters:      make([]view.Chapter, 0, len(c.Chapters)),
		CreatedAt:     view.Timestamp(c.CreatedAt),
	}
	for _, ch := range c.Chapters {
		vc := view.Chapter{Title: ch.Title, Description: ch.Description, PDFURL: ch.PDFURL, Videos: make([]view.Video, 0, len(ch.Videos))}
		for _, v := range ch.Videos {
			vc.Videos = append(vc.Videos, view.Video(v))
		}
		out.Chapters = append(out.Chapters, vc)
	}
	return out
}

func userView(u users.User) view.User {
	return view.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: view.Timestamp(u.CreatedAt),
	}
}
