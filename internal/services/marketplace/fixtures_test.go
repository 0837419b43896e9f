package marketplace

import "fmt"

const listingHTML = `<html><body>
<table class="sales-history__table">
  <thead><tr><th>Date</th><th>Order</th></tr></thead>
  <tbody>
    <tr>
      <td>Oct 14, 2026 9:15 AM</td>
      <td><div class="clickable-row" data-url="/order/sellOrder/order?oid=1001"><a class="sales-history__product-id">Sold order №1001</a></div></td>
    </tr>
    <tr>
      <td>Oct 15, 2026 10:30 AM</td>
      <td><div class="clickable-row" data-url="/order/sellOrder/order?oid=1002"><a class="sales-history__product-id">Sold order
         №1002</a></div></td>
    </tr>
    <tr>
      <td>not a date</td>
      <td><a class="sales-history__product-id">Sold order №1003</a></td>
    </tr>
    <tr>
      <td>Oct 15, 2026 10:30 AM</td>
      <td><div class="clickable-row" data-url="https://market.test/order/sellOrder/order?oid=1004"><a class="sales-history__product-id">Sold order №1004</a></div></td>
    </tr>
    <tr>
      <td>Oct 16, 2026 8:00 AM</td>
      <td><a class="sales-history__product-id">Refund №77</a></td>
    </tr>
  </tbody>
</table>
</body></html>`

const emptyListingHTML = `<html><body><div class="empty-state">No orders</div></body></html>`

func orderPage(orderID, status string) string {
	return fmt.Sprintf(`<html><body>
<div class="trade__order">
  <span class="trade__order__top-num">Sold order №%s</span>
  <span class="trade__order__top-num">Purchase order №%s9</span>
  <span class="trade__status">%s</span>
  <span class="trade__date">Oct 15, 2026 10:30 AM</span>
</div>
<h2 class="purchase-title">[PS5] 100M Cash + Cars</h2>
<table>
  <thead><tr><th>Item (Products ID : G1700000123)</th><th>Type</th></tr></thead>
  <tbody>
    <tr>
      <td data-th="Type"><span class="tooltip__content">Boosting</span></td>
      <td data-th="QTY.">1</td>
      <td data-th="PRICE/UNIT">12.50 USD</td>
      <td data-th="Amount">12.50 USD</td>
      <td data-th="Comission fee">1.25 USD</td>
      <td data-th="To be earned">11.25 USD</td>
    </tr>
  </tbody>
</table>
<div class="seller__title-orders"><a href="/buyer/john">john_doe</a></div>
<ul>
  <li class="game-info__list-item"><span class="game-info__title">Game</span><span class="game-info__info">GTA 5 Online</span></li>
  <li class="game-info__list-item"><span class="game-info__title">Platform</span><span class="game-info__info">PS5</span></li>
  <li class="game-info__list-item"><span class="game-info__title">Service Type</span><span class="game-info__info">Money</span></li>
</ul>
<a href="/chat/#/order/%s">Chat</a>
<a class="list-action__btn-default" onclick="start_trading()">Start Trading</a>
</body></html>`, orderID, orderID, status, orderID)
}
