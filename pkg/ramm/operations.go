package ramm

import (
	"github.com/holiman/uint256"

	"github.com/ramm-go/ramm/pkg/errs"
	"github.com/ramm-go/ramm/pkg/kernel"
	"github.com/ramm-go/ramm/pkg/oracle"
)

// peekAllVolatility reads the fresh price of every registered asset and
// evaluates (without committing) its volatility update. Assets not
// directly involved in the operation still have their price/volatility
// state refreshed whenever their oracle reading is consulted.
func (p *Pool) peekAllVolatility(prices []oracle.Reading, nowMillis int64) ([]volatilityRead, []*uint256.Int, error) {
	n := len(p.assets)
	reads := make([]volatilityRead, n)
	kernelPrices := make([]*uint256.Int, n)
	for i := 0; i < n; i++ {
		kp, err := kernelPriceOf(prices[i].PriceScaled, prices[i].FactorPrice)
		if err != nil {
			return nil, nil, err
		}
		kernelPrices[i] = kp

		r, err := p.peekVolatility(AssetIndex(i), kp, nowMillis)
		if err != nil {
			return nil, nil, err
		}
		reads[i] = r
	}
	return reads, kernelPrices, nil
}

func (p *Pool) commitAllVolatility(reads []volatilityRead) {
	for _, r := range reads {
		p.commitVolatility(r)
	}
}

func (p *Pool) checkTradeArity(in, out AssetIndex, prices []oracle.Reading) error {
	if err := p.requireInitialized(); err != nil {
		return err
	}
	if err := p.requireValidIndex(in); err != nil {
		return err
	}
	if err := p.requireValidIndex(out); err != nil {
		return err
	}
	if in == out {
		return errs.ErrInvalidSize
	}
	if len(prices) != len(p.assets) {
		return errSizeMismatch()
	}
	return nil
}

// TradeAmountIn executes a fixed-input trade: the caller fixes the inbound
// amount ai and receives whatever amount ao the pricing curve yields,
// subject to minAo as a slippage floor.
func (p *Pool) TradeAmountIn(in, out AssetIndex, ai, minAo *uint256.Int, prices []oracle.Reading, nowMillis int64) (*uint256.Int, error) {
	if err := p.checkTradeArity(in, out, prices); err != nil {
		return nil, err
	}

	assetIn, assetOut := &p.assets[in], &p.assets[out]

	if ai.Cmp(assetIn.minTrade) < 0 {
		return nil, errs.ErrTradeAmountTooSmall
	}
	if assetIn.lpSupply.IsZero() {
		return nil, errs.ErrNoLPTokensInCirculation
	}
	muLimitIn, err := kernel.Mul(assetIn.balance, p.econ.Mu)
	if err != nil {
		return nil, err
	}
	if ai.Cmp(muLimitIn) > 0 {
		return nil, errs.ErrTradeExcessAmountIn
	}

	reads, kernelPrices, err := p.peekAllVolatility(prices, nowMillis)
	if err != nil {
		return nil, err
	}
	volIn, volOut := reads[in].fee, reads[out].fee

	weightsPre, err := p.WeightsAndImbalanceRatios(prices)
	if err != nil {
		return nil, err
	}
	scaledFee, scaledLeverage, err := DynamicFeeAndLeverage(p.econ, weightsPre.Imbalance[in], weightsPre.Imbalance[out])
	if err != nil {
		return nil, err
	}
	phi, err := totalTradeFee(scaledFee, volIn, volOut)
	if err != nil {
		return nil, err
	}

	prFeeRaw, err := protocolFeeRaw(ai, p.econ.ProtocolFee, phi)
	if err != nil {
		return nil, err
	}
	aiEffRaw, err := effectiveInbound(ai, p.econ.ProtocolFee, phi)
	if err != nil {
		return nil, err
	}

	biKernel, err := rawMul(assetIn.balance, assetIn.factorBalance)
	if err != nil {
		return nil, err
	}
	boKernel, err := rawMul(assetOut.balance, assetOut.factorBalance)
	if err != nil {
		return nil, err
	}
	aiEffKernel, err := rawMul(aiEffRaw, assetIn.factorBalance)
	if err != nil {
		return nil, err
	}

	aoKernel, err := AmountOut(biKernel, kernelPrices[in], boKernel, kernelPrices[out], scaledLeverage, weightsPre.Weight[in], weightsPre.Weight[out], aiEffKernel)
	if err != nil {
		return nil, err
	}
	aoRaw, err := rawDiv(aoKernel, assetOut.factorBalance)
	if err != nil {
		return nil, err
	}

	if aoRaw.Cmp(minAo) < 0 {
		return nil, errs.ErrSlippageExceeded
	}
	muLimitOut, err := kernel.Mul(assetOut.balance, p.econ.Mu)
	if err != nil {
		return nil, err
	}
	if aoRaw.Cmp(muLimitOut) > 0 {
		return nil, errs.ErrTradeExcessAmountOut
	}

	newBalanceOut, err := rawSub(assetOut.balance, aoRaw)
	if err != nil {
		return nil, err
	}
	if newBalanceOut.IsZero() && !assetOut.lpSupply.IsZero() {
		return nil, errs.ErrInsufBalForCirculatingLPToken
	}

	newBalanceIn, err := rawAdd(assetIn.balance, ai)
	if err != nil {
		return nil, err
	}
	newBalanceIn, err = rawSub(newBalanceIn, prFeeRaw)
	if err != nil {
		return nil, err
	}

	post, err := p.imbalanceAfter(prices, map[AssetIndex]*uint256.Int{in: newBalanceIn, out: newBalanceOut})
	if err != nil {
		return nil, err
	}
	ok, err := CheckImbalanceRatios(weightsPre.Imbalance[in], weightsPre.Imbalance[out], post.Imbalance[in], post.Imbalance[out], p.econ.Delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrImbalanceRatiosViolated
	}

	assetIn.balance = newBalanceIn
	assetOut.balance = newBalanceOut
	assetIn.collectedFees, err = rawAdd(assetIn.collectedFees, prFeeRaw)
	if err != nil {
		return nil, err
	}
	p.commitAllVolatility(reads)

	return aoRaw, nil
}

// TradeAmountOut executes a fixed-output trade: the caller fixes the
// desired outbound amount ao and is charged whatever inbound amount ai the
// pricing curve requires, subject to maxAi as a budget ceiling.
func (p *Pool) TradeAmountOut(in, out AssetIndex, ao, maxAi *uint256.Int, prices []oracle.Reading, nowMillis int64) (*uint256.Int, error) {
	if err := p.checkTradeArity(in, out, prices); err != nil {
		return nil, err
	}

	assetIn, assetOut := &p.assets[in], &p.assets[out]

	if assetIn.lpSupply.IsZero() {
		return nil, errs.ErrNoLPTokensInCirculation
	}
	muLimitOut, err := kernel.Mul(assetOut.balance, p.econ.Mu)
	if err != nil {
		return nil, err
	}
	if ao.Cmp(muLimitOut) > 0 {
		return nil, errs.ErrTradeExcessAmountOut
	}
	newBalanceOut, err := rawSub(assetOut.balance, ao)
	if err != nil {
		return nil, err
	}
	if newBalanceOut.IsZero() && !assetOut.lpSupply.IsZero() {
		return nil, errs.ErrInsufBalForCirculatingLPToken
	}

	reads, kernelPrices, err := p.peekAllVolatility(prices, nowMillis)
	if err != nil {
		return nil, err
	}
	volIn, volOut := reads[in].fee, reads[out].fee

	weightsPre, err := p.WeightsAndImbalanceRatios(prices)
	if err != nil {
		return nil, err
	}
	scaledFee, scaledLeverage, err := DynamicFeeAndLeverage(p.econ, weightsPre.Imbalance[in], weightsPre.Imbalance[out])
	if err != nil {
		return nil, err
	}
	phi, err := totalTradeFee(scaledFee, volIn, volOut)
	if err != nil {
		return nil, err
	}

	biKernel, err := rawMul(assetIn.balance, assetIn.factorBalance)
	if err != nil {
		return nil, err
	}
	boKernel, err := rawMul(assetOut.balance, assetOut.factorBalance)
	if err != nil {
		return nil, err
	}
	aoKernel, err := rawMul(ao, assetOut.factorBalance)
	if err != nil {
		return nil, err
	}

	aiEffKernel, err := AmountIn(biKernel, kernelPrices[in], boKernel, kernelPrices[out], scaledLeverage, weightsPre.Weight[in], weightsPre.Weight[out], aoKernel)
	if err != nil {
		return nil, err
	}
	aiEffRaw, err := rawDiv(aiEffKernel, assetIn.factorBalance)
	if err != nil {
		return nil, err
	}

	feeRate, err := kernel.Mul(p.econ.ProtocolFee, phi)
	if err != nil {
		return nil, err
	}
	retained, err := rawSub(kernel.ONE(), feeRate)
	if err != nil {
		return nil, err
	}
	ai, err := kernel.Div(aiEffRaw, retained)
	if err != nil {
		return nil, err
	}

	if ai.Cmp(assetIn.minTrade) < 0 {
		return nil, errs.ErrTradeAmountTooSmall
	}
	if ai.Cmp(maxAi) > 0 {
		return nil, errs.ErrTradeExcessAmountIn
	}
	muLimitIn, err := kernel.Mul(assetIn.balance, p.econ.Mu)
	if err != nil {
		return nil, err
	}
	if ai.Cmp(muLimitIn) > 0 {
		return nil, errs.ErrTradeExcessAmountIn
	}

	prFeeRaw, err := protocolFeeRaw(ai, p.econ.ProtocolFee, phi)
	if err != nil {
		return nil, err
	}

	newBalanceIn, err := rawAdd(assetIn.balance, ai)
	if err != nil {
		return nil, err
	}
	newBalanceIn, err = rawSub(newBalanceIn, prFeeRaw)
	if err != nil {
		return nil, err
	}

	post, err := p.imbalanceAfter(prices, map[AssetIndex]*uint256.Int{in: newBalanceIn, out: newBalanceOut})
	if err != nil {
		return nil, err
	}
	ok, err := CheckImbalanceRatios(weightsPre.Imbalance[in], weightsPre.Imbalance[out], post.Imbalance[in], post.Imbalance[out], p.econ.Delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrImbalanceRatiosViolated
	}

	assetIn.balance = newBalanceIn
	assetOut.balance = newBalanceOut
	assetIn.collectedFees, err = rawAdd(assetIn.collectedFees, prFeeRaw)
	if err != nil {
		return nil, err
	}
	p.commitAllVolatility(reads)

	return ai, nil
}

// LiquidityDeposit deposits amount of asset d and mints the provider newly
// created LP tokens for d.
func (p *Pool) LiquidityDeposit(d AssetIndex, amount *uint256.Int, prices []oracle.Reading, nowMillis int64) (*uint256.Int, error) {
	if err := p.requireInitialized(); err != nil {
		return nil, err
	}
	if err := p.requireValidIndex(d); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, errs.ErrInvalidDeposit
	}
	if len(prices) != len(p.assets) {
		return nil, errSizeMismatch()
	}

	reads, _, err := p.peekAllVolatility(prices, nowMillis)
	if err != nil {
		return nil, err
	}

	asset := &p.assets[d]

	var minted *uint256.Int
	if asset.lpSupply.IsZero() {
		minted, err = scaleByDecimals(amount, asset.descriptor.decimals(), uint(asset.lpDecimals))
		if err != nil {
			return nil, err
		}
	} else {
		amountKernel, err := rawMul(amount, asset.factorBalance)
		if err != nil {
			return nil, err
		}
		balanceKernel, err := rawMul(asset.balance, asset.factorBalance)
		if err != nil {
			return nil, err
		}
		ratio, err := kernel.Div(amountKernel, balanceKernel)
		if err != nil {
			return nil, err
		}
		minted, err = kernel.Mul(asset.lpSupply, ratio)
		if err != nil {
			return nil, err
		}
	}

	asset.balance, err = rawAdd(asset.balance, amount)
	if err != nil {
		return nil, err
	}
	asset.lpSupply, err = rawAdd(asset.lpSupply, minted)
	if err != nil {
		return nil, err
	}
	p.commitAllVolatility(reads)

	return minted, nil
}

// withdrawalFeeRate is BASE_WITHDRAWAL_FEE plus the withdrawn leg's own
// volatility fee, applied to the gross amount leaving that leg's balance.
func withdrawalFeeRate(baseWithdrawalFee, volFee *uint256.Int) (*uint256.Int, error) {
	return rawAdd(baseWithdrawalFee, volFee)
}

// LiquidityWithdrawal burns lpAmount LP tokens of asset w and pays out the
// redeeming share of pool value, primarily in w and, if w's balance cannot
// cover it, made up proportionally from the other registered assets at
// oracle prices.
//
// payouts and feesCharged are indexed the same way as every other
// per-asset slice in this package: by AssetIndex across the whole pool.
func (p *Pool) LiquidityWithdrawal(w AssetIndex, lpAmount *uint256.Int, prices []oracle.Reading, nowMillis int64) (payouts, feesCharged []*uint256.Int, err error) {
	if err := p.requireInitialized(); err != nil {
		return nil, nil, err
	}
	if err := p.requireValidIndex(w); err != nil {
		return nil, nil, err
	}
	if lpAmount.IsZero() {
		return nil, nil, errs.ErrInvalidWithdrawal
	}
	withdrawn := &p.assets[w]
	if lpAmount.Cmp(withdrawn.lpSupply) > 0 {
		return nil, nil, errs.ErrInvalidWithdrawal
	}
	if len(prices) != len(p.assets) {
		return nil, nil, errSizeMismatch()
	}

	reads, kernelPrices, err := p.peekAllVolatility(prices, nowMillis)
	if err != nil {
		return nil, nil, err
	}

	n := len(p.assets)
	payouts = make([]*uint256.Int, n)
	feesCharged = make([]*uint256.Int, n)
	newBalances := make([]*uint256.Int, n)
	for i := range newBalances {
		newBalances[i] = p.assets[i].balance
		payouts[i] = kernel.Zero()
		feesCharged[i] = kernel.Zero()
	}

	s, err := kernel.Div(lpAmount, withdrawn.lpSupply)
	if err != nil {
		return nil, nil, err
	}
	pW, err := kernel.Mul(withdrawn.balance, s)
	if err != nil {
		return nil, nil, err
	}

	feeRateW, err := withdrawalFeeRate(p.econ.BaseWithdrawalFee, reads[w].fee)
	if err != nil {
		return nil, nil, err
	}

	if withdrawn.balance.Cmp(pW) >= 0 {
		feeW, err := kernel.Mul(pW, feeRateW)
		if err != nil {
			return nil, nil, err
		}
		netW, err := rawSub(pW, feeW)
		if err != nil {
			return nil, nil, err
		}
		newBalances[w], err = rawSub(withdrawn.balance, pW)
		if err != nil {
			return nil, nil, err
		}
		payouts[w], feesCharged[w] = netW, feeW
	} else {
		feeW, err := kernel.Mul(withdrawn.balance, feeRateW)
		if err != nil {
			return nil, nil, err
		}
		netW, err := rawSub(withdrawn.balance, feeW)
		if err != nil {
			return nil, nil, err
		}
		payouts[w], feesCharged[w] = netW, feeW
		newBalances[w] = kernel.Zero()

		deficitRaw, err := rawSub(pW, withdrawn.balance)
		if err != nil {
			return nil, nil, err
		}
		deficitKernelUnits, err := rawMul(deficitRaw, withdrawn.factorBalance)
		if err != nil {
			return nil, nil, err
		}
		deficitValue, err := kernel.Mul(deficitKernelUnits, kernelPrices[w])
		if err != nil {
			return nil, nil, err
		}

		// Proportional weights over every other asset's current value.
		otherValue := make([]*uint256.Int, n)
		sumOtherValue := kernel.Zero()
		for j := 0; j < n; j++ {
			if AssetIndex(j) == w {
				continue
			}
			bj, err := rawMul(p.assets[j].balance, p.assets[j].factorBalance)
			if err != nil {
				return nil, nil, err
			}
			vj, err := kernel.Mul(bj, kernelPrices[j])
			if err != nil {
				return nil, nil, err
			}
			otherValue[j] = vj
			sumOtherValue, err = rawAdd(sumOtherValue, vj)
			if err != nil {
				return nil, nil, err
			}
		}

		for j := 0; j < n; j++ {
			if AssetIndex(j) == w {
				continue
			}
			if sumOtherValue.IsZero() {
				break
			}
			shareWeight, err := kernel.Div(otherValue[j], sumOtherValue)
			if err != nil {
				return nil, nil, err
			}
			shareValue, err := kernel.Mul(deficitValue, shareWeight)
			if err != nil {
				return nil, nil, err
			}
			grossKernel, err := kernel.Div(shareValue, kernelPrices[j])
			if err != nil {
				return nil, nil, err
			}
			grossRaw, err := rawDiv(grossKernel, p.assets[j].factorBalance)
			if err != nil {
				return nil, nil, err
			}

			feeRateJ, err := withdrawalFeeRate(p.econ.BaseWithdrawalFee, reads[j].fee)
			if err != nil {
				return nil, nil, err
			}
			feeJ, err := kernel.Mul(grossRaw, feeRateJ)
			if err != nil {
				return nil, nil, err
			}
			netJ, err := rawSub(grossRaw, feeJ)
			if err != nil {
				return nil, nil, err
			}
			newBalances[j], err = rawSub(p.assets[j].balance, grossRaw)
			if err != nil {
				return nil, nil, err
			}
			payouts[j], feesCharged[j] = netJ, feeJ
		}
	}

	newLPSupplyW, err := rawSub(withdrawn.lpSupply, lpAmount)
	if err != nil {
		return nil, nil, err
	}
	for i := 0; i < n; i++ {
		lpSupplyI := p.assets[i].lpSupply
		if AssetIndex(i) == w {
			lpSupplyI = newLPSupplyW
		}
		if newBalances[i].IsZero() && !lpSupplyI.IsZero() {
			return nil, nil, errs.ErrInsufBalForCirculatingLPToken
		}
	}

	for i := 0; i < n; i++ {
		p.assets[i].balance = newBalances[i]
		p.assets[i].collectedFees, err = rawAdd(p.assets[i].collectedFees, feesCharged[i])
		if err != nil {
			return nil, nil, err
		}
	}
	withdrawn.lpSupply = newLPSupplyW
	p.commitAllVolatility(reads)

	return payouts, feesCharged, nil
}

// CollectFees pays every asset's accrued protocol fees to the admin and
// zeroes the accrual.
func (p *Pool) CollectFees(cap AdminCap) ([]*uint256.Int, error) {
	if cap.PoolID != p.id || cap.AdminID != p.adminID {
		return nil, errs.ErrNotAdmin
	}
	collected := make([]*uint256.Int, len(p.assets))
	for i := range p.assets {
		collected[i] = p.assets[i].collectedFees.Clone()
		p.assets[i].collectedFees = kernel.Zero()
	}
	return collected, nil
}
