package crawler

const rowsPage = `<html><body>
<form name="filter_frm"><table>
<tr id="head_line"><td>Sludinājumi</td></tr>
<tr id="tr_1001">
	<td><input type="checkbox"></td>
	<td><a href="/msg/lv/transport/cars/bmw/3-series/a1.html">BMW 320d Touring</a></td>
	<td>2005 dīzelis manuāla universāls</td>
	<td>250 tūkst.</td>
	<td>3 200 €</td>
</tr>
<tr id="tr_1002">
	<td></td>
	<td><a href="/msg/lv/transport/cars/bmw/3-series/a2.html">BMW 318i</a></td>
	<td>2006 benzīns manuāla sedans</td>
	<td>180 tūkst.</td>
	<td>2 900 €</td>
</tr>
<tr id="tr_1003">
	<td></td>
	<td><a href="https://www.ss.com/msg/lv/transport/cars/bmw/3-series/a3.html">BMW 330d</a></td>
	<td>2007 Diesel Manual Touring</td>
	<td>5 €</td>
	<td>4 500 €</td>
</tr>
</table></form>
</body></html>`

const onclickPage = `<html><body>
<table class="d1">
<tr onclick="window.open('/msg/lv/transport/cars/bmw/3-series/xyz.html')">
	<td></td>
	<td><a href="/msg/lv/transport/cars/bmw/3-series/xyz.html">BMW 325d</a></td>
	<td>2008 dīzelis manuāla universāls</td>
	<td>6 100 €</td>
</tr>
<tr onclick="window.open('/msg/lv/transport/cars/bmw/3-series/short.html')">
	<td><a href="/msg/lv/transport/cars/bmw/3-series/short.html">BMW</a></td>
	<td>2004 dīzelis manuāla universāls</td>
</tr>
</table>
</body></html>`

const linksPage = `<html><body>
<table><tr><td>Nav rezultātu tabulā</td></tr></table>
<div class="gallery">
	<a href="/msg/lv/bmw/aaa.html"><img src="aaa.jpg"></a>
	<a href="/msg/lv/bmw/aaa.html">BMW 320d</a>
	<a href="/msg/lv/bmw/bbb.html">BMW 318d</a>
	<a href="/msg/lv/bmw/ccc.html">BMW 316i</a>
	<a href="/lv/transport/cars/">Back</a>
</div>
</body></html>`

const matchingDetailPage = `<html><body>
<h1>BMW 320 Touring 2004</h1>
<table>
<tr class="d1"><td class="ads_opt">Izlaiduma gads</td><td class="ads_opt_b">2004</td></tr>
<tr class="d1"><td class="ads_opt">Motors</td><td class="ads_opt_b">2.0 dīzelis</td></tr>
<tr class="d1"><td class="ads_opt">Ātr.kārba</td><td class="ads_opt_b">Manuāla</td></tr>
<tr class="d1"><td class="ads_opt">Virsbūves tips</td><td class="ads_opt_b">Universāls</td></tr>
</table>
<span class="ads_price">3 500 €</span>
</body></html>`

const untitledDetailPage = `<html><body>
<table>
<tr class="d1"><td class="ads_opt">Izlaiduma gads</td><td class="ads_opt_b">2003</td></tr>
<tr class="d1"><td class="ads_opt">Motors</td><td class="ads_opt_b">diesel</td></tr>
<tr class="d1"><td class="ads_opt">Ātr.kārba</td><td class="ads_opt_b">manual</td></tr>
<tr class="d1"><td class="ads_opt">Virsbūves tips</td><td class="ads_opt_b">wagon</td></tr>
</table>
</body></html>`

const petrolDetailPage = `<html><body>
<h1>BMW 316i</h1>
<table>
<tr class="d1"><td class="ads_opt">Izlaiduma gads</td><td class="ads_opt_b">2005</td></tr>
<tr class="d1"><td class="ads_opt">Motors</td><td class="ads_opt_b">1.6 benzīns</td></tr>
</table>
<span class="ads_price">2 000 €</span>
</body></html>`

const noTablePage = `<html><body><p>Serviss īslaicīgi nav pieejams</p></body></html>`

const lastTablePage = `<html><body>
<table id="top_menu"><tr><td><a href="/lv/transport/">Transports</a></td><td>Meklēt</td></tr></table>
<table id="search_form"><tr><td>Marka</td><td>BMW</td><td>Modelis</td><td>3. sērija</td></tr></table>
<table id="results_page">
<tr id="tr_7001">
	<td></td>
	<td><a href="/msg/lv/transport/cars/bmw/3-series/l1.html">BMW 318d Touring</a></td>
	<td>2008 dīzelis manuāla universāls</td>
	<td>5 800 €</td>
</tr>
</table>
</body></html>`
