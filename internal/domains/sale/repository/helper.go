package repository

import promoModel "pos-backend/internal/domains/promotion/model"

func promoType(s string) promoModel.ActivePromotionType {
	switch promoModel.ActivePromotionType(s) {
	case promoModel.ActivePromotionTwoForOne:
		return promoModel.ActivePromotionTwoForOne
	case promoModel.ActivePromotionCustom:
		return promoModel.ActivePromotionCustom
	}
	return promoModel.ActivePromotionNone
}
