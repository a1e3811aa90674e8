package bot

// Reply texts for both bots. The bots speak Malay with the occasional
// English loanword, matching their audience.
const (
	msgWelcome = "👋 Hai! Saya *LaporBelanjaBot*, pembantu rekod belanja anda.\n\n" +
		"Sila taip maklumat belanja dalam format berikut:\n" +
		"▫️ `RM10 Nasi lemak kedai Ali`\n" +
		"▫️ `Teh tarik RM2 gerai bawah flat`\n" +
		"▫️ `Sabun Dobi RM12`\n\n" +
		"*Wajib ada jumlah RM dan barang dibeli.*\n" +
		"Kedai/Tempat adalah pilihan.\n\n" +
		"📸 Boleh juga upload gambar resit terus.\n" +
		"Taip /cancel untuk berhenti bila-bila masa."

	msgOnline = "✅ Bot sedang ONLINE dan sedia membantu."

	msgCancelled = "✅ Sesi dibatalkan. Taip /start untuk mula semula."

	msgFormatHelp = "⚠️ Format tidak lengkap. Mesti ada *jumlah RM* dan *barang dibeli* seperti:\n" +
		"`RM5 nasi lemak kedai Ali` atau `sabun RM2 kedai mamak`."

	msgAskLocation = "📍 Di mana anda membelinya? (Taip nama tempat atau taip `-` jika tiada)"

	msgAskMore = "Ada apa-apa lagi yang dibeli? Taip `tidak` jika sudah selesai."

	msgAskReceipt = "📸 Boleh upload gambar resit? (Optional - taip `skip` untuk langkau)"

	msgAwaitReceipt = "Sila upload gambar resit atau taip `skip`."

	msgReceiptAttached = "📸 Gambar resit diterima!"

	msgOCRFailed = "⚠️ Tiada teks berjaya dikenalpasti dalam gambar itu. " +
		"Sila hantar gambar resit yang lebih jelas, atau taip belanja secara manual."

	msgOCRUnavailable = "⚠️ Bacaan resit tidak tersedia buat masa ini. Sila taip belanja secara manual."

	msgReceiptNoTotal = "🤔 Saya tidak jumpa jumlah dalam resit itu. " +
		"Sila taip belanja secara manual seperti `nasi ayam rm10.50`."

	msgSaveFailed = "❌ Gagal simpan ke Google Sheets. Sila cuba lagi nanti."

	msgReadFailed = "❌ Gagal baca rekod belanja. Sila cuba lagi nanti."

	msgReportWelcome = "👋 Hai! Saya *LaporanBelanjaBot*. Pilih laporan yang anda mahu lihat:"

	msgUnknown = "❓ Maaf, saya tak faham mesej anda. Sila cuba semula atau taip /start"
)
